package domain

import "fmt"

type ProfileType string

const (
	ProfileTypeLocal ProfileType = "local"
	ProfileTypeS3    ProfileType = "s3"
)

// AcquisitionProfile tells the acquisition layer where a month's workbooks live.
type AcquisitionProfile struct {
	Name       string
	Type       ProfileType
	Dir        string
	Bucket     string
	Prefix     string
	Region     string
	AWSProfile string
}

func (c AcquisitionProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}
