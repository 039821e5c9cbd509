package config

import (
	"errors"
	"fmt"
	"strings"
)

// Unknown-value policies for recoded columns.
const (
	OnUnknownError   = "error"
	OnUnknownMissing = "missing"
)

// Rename maps a raw header name to its corrected spelling. Matching is exact and case-sensitive.
type Rename struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// Mapping is one entry of a categorical recode.
type Mapping struct {
	From string `mapstructure:"from" yaml:"from"`
	To   int    `mapstructure:"to" yaml:"to"`
}

// Recode turns a two-valued string column into integer codes.
type Recode struct {
	Column string    `mapstructure:"column" yaml:"column"`
	Rename string    `mapstructure:"rename" yaml:"rename"`
	Values []Mapping `mapstructure:"values" yaml:"values"`
}

// Target is the column name after the recode has been applied.
func (r Recode) Target() string {
	if r.Rename != "" {
		return r.Rename
	}
	return r.Column
}

// Codes returns the set of integer codes the recode produces.
func (r Recode) Codes() map[int]bool {
	out := make(map[int]bool, len(r.Values))
	for _, m := range r.Values {
		out[m.To] = true
	}
	return out
}

// Lookup returns the code for a raw value.
func (r Recode) Lookup(v string) (int, bool) {
	for _, m := range r.Values {
		if m.From == v {
			return m.To, true
		}
	}
	return 0, false
}

// Roles names the cleaned columns each analysis stage reads.
type Roles struct {
	Outcome        string `mapstructure:"outcome" yaml:"outcome"`
	Gender         string `mapstructure:"gender" yaml:"gender"`
	Scholarship    string `mapstructure:"scholarship" yaml:"scholarship"`
	Age            string `mapstructure:"age" yaml:"age"`
	Neighbourhood  string `mapstructure:"neighbourhood" yaml:"neighbourhood"`
	AppointmentDay string `mapstructure:"appointment_day" yaml:"appointment_day"`
	Patient        string `mapstructure:"patient" yaml:"patient"`
}

// Schema is the declarative cleaning table for the appointments dataset.
type Schema struct {
	Required  []string `mapstructure:"required" yaml:"required"`
	Renames   []Rename `mapstructure:"renames" yaml:"renames"`
	Lowercase bool     `mapstructure:"lowercase" yaml:"lowercase"`
	Recodes   []Recode `mapstructure:"recodes" yaml:"recodes"`
	Dates     []string `mapstructure:"dates" yaml:"dates"`
	OnUnknown string   `mapstructure:"on_unknown" yaml:"on_unknown"`
	Roles     Roles    `mapstructure:"roles" yaml:"roles"`
}

// DefaultSchema describes the Kaggle no-show appointments file (May 2016 export).
func DefaultSchema() Schema {
	return Schema{
		Required: []string{
			"PatientId", "AppointmentID", "Gender", "ScheduledDay", "AppointmentDay",
			"Age", "Neighbourhood", "Scholarship", "Hipertension", "Diabetes",
			"Alcoholism", "Handcap", "SMS_received", "No-show",
		},
		Renames: []Rename{
			{From: "Hipertension", To: "Hypertension"},
			{From: "Handcap", To: "Handicap"},
			{From: "No-show", To: "No_show"},
		},
		Lowercase: true,
		Recodes: []Recode{
			{Column: "no_show", Values: []Mapping{{From: "Yes", To: 1}, {From: "No", To: 0}}},
			{Column: "gender", Rename: "male", Values: []Mapping{{From: "M", To: 1}, {From: "F", To: 0}}},
		},
		Dates:     []string{"scheduledday", "appointmentday"},
		OnUnknown: OnUnknownError,
		Roles: Roles{
			Outcome:        "no_show",
			Gender:         "male",
			Scholarship:    "scholarship",
			Age:            "age",
			Neighbourhood:  "neighbourhood",
			AppointmentDay: "appointmentday",
			Patient:        "patientid",
		},
	}
}

// Validate checks the schema for internal consistency. It does not look at any data.
func (s Schema) Validate() error {
	var errs []error
	switch s.OnUnknown {
	case OnUnknownError, OnUnknownMissing:
	default:
		errs = append(errs, fmt.Errorf("on_unknown: %q (use %s|%s)", s.OnUnknown, OnUnknownError, OnUnknownMissing))
	}
	for i, r := range s.Renames {
		if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
			errs = append(errs, fmt.Errorf("renames[%d]: from and to are required", i))
		}
	}
	for i, r := range s.Recodes {
		if r.Column == "" {
			errs = append(errs, fmt.Errorf("recodes[%d]: column is required", i))
			continue
		}
		if len(r.Values) == 0 {
			errs = append(errs, fmt.Errorf("recodes[%d] (%s): no values", i, r.Column))
			continue
		}
		seen := map[string]bool{}
		for _, m := range r.Values {
			if seen[m.From] {
				errs = append(errs, fmt.Errorf("recodes[%d] (%s): duplicate source value %q", i, r.Column, m.From))
			}
			seen[m.From] = true
		}
		if len(r.Codes()) != len(r.Values) {
			errs = append(errs, fmt.Errorf("recodes[%d] (%s): codes must be distinct", i, r.Column))
		}
	}
	roles := map[string]string{
		"outcome":     s.Roles.Outcome,
		"gender":      s.Roles.Gender,
		"scholarship": s.Roles.Scholarship,
		"age":         s.Roles.Age,
	}
	for k, v := range roles {
		if v == "" {
			errs = append(errs, fmt.Errorf("roles.%s is required", k))
		}
	}
	return errors.Join(errs...)
}

// RoleColumns lists the non-empty role column names.
func (s Schema) RoleColumns() []string {
	var out []string
	for _, c := range []string{
		s.Roles.Outcome, s.Roles.Gender, s.Roles.Scholarship, s.Roles.Age,
		s.Roles.Neighbourhood, s.Roles.AppointmentDay, s.Roles.Patient,
	} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// defaultsMap flattens the schema into the plain maps viper keeps as defaults.
func (s Schema) defaultsMap() map[string]any {
	renames := make([]map[string]any, 0, len(s.Renames))
	for _, r := range s.Renames {
		renames = append(renames, map[string]any{"from": r.From, "to": r.To})
	}
	recodes := make([]map[string]any, 0, len(s.Recodes))
	for _, r := range s.Recodes {
		vals := make([]map[string]any, 0, len(r.Values))
		for _, m := range r.Values {
			vals = append(vals, map[string]any{"from": m.From, "to": m.To})
		}
		recodes = append(recodes, map[string]any{"column": r.Column, "rename": r.Rename, "values": vals})
	}
	return map[string]any{
		"required":   s.Required,
		"renames":    renames,
		"lowercase":  s.Lowercase,
		"recodes":    recodes,
		"dates":      s.Dates,
		"on_unknown": s.OnUnknown,
		"roles": map[string]any{
			"outcome":         s.Roles.Outcome,
			"gender":          s.Roles.Gender,
			"scholarship":     s.Roles.Scholarship,
			"age":             s.Roles.Age,
			"neighbourhood":   s.Roles.Neighbourhood,
			"appointment_day": s.Roles.AppointmentDay,
			"patient":         s.Roles.Patient,
		},
	}
}
