package pmu

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
	mapset "github.com/deckarep/golang-set/v2"

	"perfenc/internal/attrs"
	"perfenc/internal/pfmerr"
)

// MaxEventAttrs bounds the number of attributes in one event string.
const MaxEventAttrs = 64

// Event strings look like [pmu::]event[:attr[=value]]...
var (
	eventLexer = stateful.MustSimple([]stateful.Rule{
		{Name: "PMUSep", Pattern: `::`, Action: nil},
		{Name: "Colon", Pattern: `:`, Action: nil},
		{Name: "Eq", Pattern: `=`, Action: nil},
		{Name: "Word", Pattern: `[^:=\s]+`, Action: nil},
	})
	eventParser = participle.MustBuild(&eventSpec{},
		participle.Lexer(eventLexer),
		participle.UseLookahead(2),
	)
)

type eventSpec struct {
	PMU   string      `parser:"(@Word PMUSep)?"`
	Event string      `parser:"@Word"`
	Attrs []*attrSpec `parser:"(Colon @@)*"`
}

type attrSpec struct {
	Name  string  `parser:"@Word"`
	Value *string `parser:"(Eq @Word)?"`
}

func parseEventString(str string) (*eventSpec, error) {
	spec := &eventSpec{}
	if err := eventParser.ParseString("", str, spec); err != nil {
		return nil, fmt.Errorf("malformed event %q: %v: %w", str, err, pfmerr.ErrInvalid)
	}
	return spec, nil
}

// Parse resolves an event string against the registry. os selects the
// OS-level attribute namespace, nil for a raw encoding.
func (r *Registry) Parse(str string, os *attrs.Namespace, dflPLM int) (*EventDesc, error) {
	spec, err := parseEventString(str)
	if err != nil {
		return nil, err
	}
	if len(spec.Attrs) > MaxEventAttrs {
		return nil, fmt.Errorf("event %q has %d attributes, at most %d: %w", str, len(spec.Attrs), MaxEventAttrs, pfmerr.ErrTooMany)
	}
	e := &EventDesc{OS: os, DflPLM: dflPLM}
	if e.PMU, e.Event, err = r.findEvent(spec.PMU, spec.Event); err != nil {
		return nil, err
	}
	e.buildPattrs()
	seen := mapset.NewSet[int]()
	for _, as := range spec.Attrs {
		id, value, err := e.matchAttr(as)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", str, err)
		}
		if !seen.Add(id) {
			return nil, fmt.Errorf("event %q: %s: %w", str, as.Name, pfmerr.ErrAttrSet)
		}
		e.Attrs = append(e.Attrs, AttrValue{ID: id, Value: value})
	}
	return e, nil
}

func (r *Registry) findEvent(pmuName, eventName string) (*PMU, int, error) {
	if pmuName != "" {
		p, ok := r.Lookup(pmuName)
		if !ok {
			return nil, 0, fmt.Errorf("PMU %q: %w", pmuName, pfmerr.ErrNotFound)
		}
		idx := p.EventIndex(eventName)
		if idx < 0 {
			return nil, 0, fmt.Errorf("event %q on PMU %s: %w", eventName, p.Name, pfmerr.ErrNotFound)
		}
		return p, idx, nil
	}
	for _, p := range r.pmus {
		if idx := p.EventIndex(eventName); idx >= 0 {
			return p, idx, nil
		}
	}
	return nil, 0, fmt.Errorf("event %q: %w", eventName, pfmerr.ErrNotFound)
}

// matchAttr finds the pattr named by as and decodes its value.
func (e *EventDesc) matchAttr(as *attrSpec) (int, uint64, error) {
	for id, a := range e.Pattrs {
		if a.Type == attrs.TypeRawUmask || !strings.EqualFold(a.Name, as.Name) {
			continue
		}
		value, err := attrValue(a, as.Value)
		if err != nil {
			return 0, 0, fmt.Errorf("%s: %w", as.Name, err)
		}
		return id, value, nil
	}
	// numeric unit masks, on PMUs that take them
	if as.Value == nil {
		if v, err := strconv.ParseUint(as.Name, 0, 64); err == nil {
			for id, a := range e.Pattrs {
				if a.Type == attrs.TypeRawUmask {
					return id, v, nil
				}
			}
		}
	}
	return 0, 0, fmt.Errorf("%s: %w", as.Name, pfmerr.ErrAttr)
}

func attrValue(a attrs.Info, value *string) (uint64, error) {
	switch a.Type {
	case attrs.TypeUmask:
		if value != nil {
			return 0, fmt.Errorf("unit mask takes no value: %w", pfmerr.ErrAttrValue)
		}
		return 1, nil
	case attrs.TypeBool:
		if value == nil {
			return 1, nil
		}
		switch strings.ToLower(*value) {
		case "1", "y", "yes":
			return 1, nil
		case "0", "n", "no":
			return 0, nil
		}
		return 0, fmt.Errorf("boolean value %q: %w", *value, pfmerr.ErrAttrValue)
	case attrs.TypeInt:
		if value == nil {
			return 0, fmt.Errorf("missing value: %w", pfmerr.ErrAttrValue)
		}
		v, err := strconv.ParseUint(*value, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("integer value %q: %w", *value, pfmerr.ErrAttrValue)
		}
		return v, nil
	}
	return 0, fmt.Errorf("attribute type %s: %w", a.Type, pfmerr.ErrAttrValue)
}
