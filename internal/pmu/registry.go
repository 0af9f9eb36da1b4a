package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"perfenc/internal/pfmerr"
)

// Registry holds the PMUs known to the encoder, in lookup priority order.
// It is immutable once built.
type Registry struct {
	pmus []*PMU
}

// NewRegistry checks that names and ids are unique and that every PMU has
// a driver.
func NewRegistry(pmus ...*PMU) (*Registry, error) {
	names := mapset.NewSet[string]()
	ids := mapset.NewSet[int]()
	for _, p := range pmus {
		if p.Driver == nil {
			return nil, fmt.Errorf("PMU %s has no driver: %w", p.Name, pfmerr.ErrInvalid)
		}
		if len(p.Events) == 0 {
			return nil, fmt.Errorf("PMU %s has no events: %w", p.Name, pfmerr.ErrInvalid)
		}
		if !names.Add(strings.ToLower(p.Name)) {
			return nil, fmt.Errorf("duplicate PMU name %s: %w", p.Name, pfmerr.ErrInvalid)
		}
		if !ids.Add(p.ID) {
			return nil, fmt.Errorf("duplicate PMU id %d (%s): %w", p.ID, p.Name, pfmerr.ErrInvalid)
		}
		if p.SupportedPLM&^PLMAll != 0 {
			return nil, fmt.Errorf("PMU %s supports unknown privilege levels 0x%x: %w", p.Name, p.SupportedPLM, pfmerr.ErrInvalid)
		}
	}
	return &Registry{pmus: pmus}, nil
}

// PMUs returns the registered PMUs in priority order.
func (r *Registry) PMUs() []*PMU {
	return append([]*PMU(nil), r.pmus...)
}

// Lookup finds a PMU by name, ignoring case.
func (r *Registry) Lookup(name string) (*PMU, bool) {
	for _, p := range r.pmus {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return nil, false
}

// ByID finds a PMU by numeric id.
func (r *Registry) ByID(id int) (*PMU, bool) {
	for _, p := range r.pmus {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Subset returns a registry restricted to the named PMUs, keeping the
// original order. Unknown names are an error.
func (r *Registry) Subset(names []string) (*Registry, error) {
	want := mapset.NewSet[string]()
	for _, n := range names {
		want.Add(strings.ToLower(n))
	}
	var pmus []*PMU
	for _, p := range r.pmus {
		name := strings.ToLower(p.Name)
		if want.Contains(name) {
			want.Remove(name)
			pmus = append(pmus, p)
		}
	}
	if want.Cardinality() > 0 {
		missing := want.ToSlice()
		slices.Sort(missing)
		return nil, fmt.Errorf("unknown PMU(s) %s: %w", strings.Join(missing, ", "), pfmerr.ErrNotFound)
	}
	return &Registry{pmus: pmus}, nil
}
