package config

import (
	"context"
	"fmt"

	"github.com/de-tools/fidc-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Registry exposes the acquisition profiles declared in an ini file:
//
//	[monthly]
//	type = s3
//	bucket = fidc-reports
//	prefix = 2025/04
//	region = sa-east-1
//	aws_profile = reports
type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.AcquisitionProfile, error)
	GetProfile(ctx context.Context, name string) (*domain.AcquisitionProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.AcquisitionProfile, error) {
	var profiles []domain.AcquisitionProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		p, err := profileFromSection(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*domain.AcquisitionProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}
	return profileFromSection(section)
}

func profileFromSection(section *ini.Section) (*domain.AcquisitionProfile, error) {
	p := &domain.AcquisitionProfile{
		Name:       section.Name(),
		Type:       domain.ProfileType(section.Key("type").MustString(string(domain.ProfileTypeLocal))),
		Dir:        section.Key("dir").String(),
		Bucket:     section.Key("bucket").String(),
		Prefix:     section.Key("prefix").String(),
		Region:     section.Key("region").String(),
		AWSProfile: section.Key("aws_profile").String(),
	}
	switch p.Type {
	case domain.ProfileTypeLocal:
		if p.Dir == "" {
			return nil, fmt.Errorf("profile %s: dir is required", p.Name)
		}
	case domain.ProfileTypeS3:
		if p.Bucket == "" {
			return nil, fmt.Errorf("profile %s: bucket is required", p.Name)
		}
	default:
		return nil, fmt.Errorf("profile %s: unknown type %q", p.Name, p.Type)
	}
	return p, nil
}
