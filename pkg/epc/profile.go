// Copyright (c) 2021 by library authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package epc

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile is a declarative set of EPC settings, usually loaded from YAML:
//
//	epc: enable
//	conditions:
//	  idle_b:
//	    timer: 2m
//	    save: true
//	  standby_z:
//	    enabled: false
type Profile struct {
	// EPC is "enable", "disable" or empty to leave the feature set alone.
	EPC        string                          `yaml:"epc,omitempty"`
	Conditions map[Condition]*ConditionProfile `yaml:"conditions,omitempty"`
}

type ConditionProfile struct {
	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`
	// Timer is a Go duration. When empty only the state is changed.
	Timer string `yaml:"timer,omitempty"`
	Save  bool   `yaml:"save,omitempty"`

	timer Timer
}

// IsEnabled reports the requested state of the condition.
func (c *ConditionProfile) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoadProfile decodes and validates a YAML profile. Unknown keys are
// rejected.
func LoadProfile(r io.Reader) (*Profile, error) {
	p := &Profile{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the EPC action and parses every timer.
func (p *Profile) Validate() error {
	switch p.EPC {
	case "", "enable", "disable":
	default:
		return fmt.Errorf("profile: epc must be \"enable\" or \"disable\", got %q", p.EPC)
	}
	for c, cp := range p.Conditions {
		if cp == nil {
			return fmt.Errorf("profile: %s: empty condition", c)
		}
		if cp.Timer == "" {
			continue
		}
		d, err := time.ParseDuration(cp.Timer)
		if err != nil {
			return fmt.Errorf("profile: %s: %w", c, err)
		}
		if cp.timer, err = TimerFromDuration(d); err != nil {
			return fmt.Errorf("profile: %s: %w", c, err)
		}
	}
	return nil
}

// EnablesEPC reports whether applying p enables the EPC feature set, which
// disables APM on the device.
func (p *Profile) EnablesEPC() bool {
	return p.EPC == "enable"
}

// ApplyProfile validates and applies p. The EPC feature set is toggled
// first, then conditions are configured in log page order. It stops at the
// first failing command.
func (d *Device) ApplyProfile(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch p.EPC {
	case "enable":
		if err := d.EnableEPC(); err != nil {
			return err
		}
	case "disable":
		if err := d.DisableEPC(); err != nil {
			return err
		}
	}
	for _, c := range Conditions {
		cp, ok := p.Conditions[c]
		if !ok || cp == nil {
			continue
		}
		var err error
		if cp.Timer == "" {
			err = d.SetState(c, cp.IsEnabled(), cp.Save)
		} else {
			err = d.SetTimer(c, cp.timer, cp.IsEnabled(), cp.Save)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
	}
	return nil
}
