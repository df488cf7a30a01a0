package iproute

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/brightwire-networks/brightwire/pkg/intf"
	"github.com/brightwire-networks/brightwire/pkg/util"
)

// DeclFile is a declared route set loaded from YAML. It is the input to
// the resync workflow: the file states the full desired contents of the
// (tag-scoped) table, and everything not declared is removed.
//
// Format:
//
//	routes:
//	  - prefix: 10.1.0.0/24
//	    preference: 1        # optional, default 1
//	    tag: 100             # optional, default 0
//	    metric: 0            # optional
//	    persistent: true     # optional
//	    vias:
//	      - hop: 192.0.2.1
//	      - hop: 192.0.2.5
//	        intf: Ethernet4
//	      - nexthop_group: nhg-edge
type DeclFile struct {
	Routes []DeclRoute `yaml:"routes"`
}

// DeclRoute is one declared route with its vias.
type DeclRoute struct {
	Prefix     string    `yaml:"prefix"`
	Preference *uint8    `yaml:"preference,omitempty"`
	Tag        uint32    `yaml:"tag,omitempty"`
	Metric     uint32    `yaml:"metric,omitempty"`
	Persistent bool      `yaml:"persistent,omitempty"`
	Vias       []DeclVia `yaml:"vias,omitempty"`
}

// DeclVia is one declared nexthop.
type DeclVia struct {
	Hop          string `yaml:"hop,omitempty"`
	Intf         string `yaml:"intf,omitempty"`
	NexthopGroup string `yaml:"nexthop_group,omitempty"`
	MPLSLabel    uint32 `yaml:"mpls_label,omitempty"`
}

// LoadDeclFile reads and parses a declared route set from a YAML file.
// The declaration is fully validated here; Declare assumes valid input.
func LoadDeclFile(path string) (*DeclFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading route declaration: %w", err)
	}
	var f DeclFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing route declaration %s: %w", path, err)
	}
	if _, _, err := f.Expand(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &f, nil
}

// Expand converts the declaration into typed routes and vias, validating
// every entry. Nothing is applied; errors here leave all tables untouched.
func (f *DeclFile) Expand() ([]Route, []Via, error) {
	var routes []Route
	var vias []Via
	for i, dr := range f.Routes {
		prefix, err := util.ParsePrefix(dr.Prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		key := RouteKey{Prefix: prefix, Preference: DefaultPreference}
		if dr.Preference != nil {
			key.Preference = *dr.Preference
		}
		routes = append(routes, Route{
			Key:        key,
			Tag:        dr.Tag,
			Metric:     dr.Metric,
			Persistent: dr.Persistent,
		})

		for j, dv := range dr.Vias {
			v := Via{RouteKey: key, NexthopGroup: dv.NexthopGroup, MPLSLabel: dv.MPLSLabel}
			if dv.Hop != "" {
				if v.Hop, err = util.ParseAddr(dv.Hop); err != nil {
					return nil, nil, fmt.Errorf("routes[%d].vias[%d]: %w", i, j, err)
				}
			}
			if dv.Intf != "" {
				if v.Intf, err = intf.Parse(dv.Intf); err != nil {
					return nil, nil, fmt.Errorf("routes[%d].vias[%d]: %w", i, j, err)
				}
			}
			if err := v.Validate(); err != nil {
				return nil, nil, fmt.Errorf("routes[%d].vias[%d]: %w", i, j, err)
			}
			vias = append(vias, v)
		}
	}
	return routes, vias, nil
}

// Declare runs the full resync workflow against m: init a session, declare
// the file's routes and vias, and complete. Entries in m visible under its
// current tag and not present in the file are removed.
func (f *DeclFile) Declare(m *Manager) error {
	routes, vias, err := f.Expand()
	if err != nil {
		return err
	}
	m.ResyncInit()
	for _, r := range routes {
		m.RouteSet(r)
	}
	for _, v := range vias {
		if err := m.ViaSet(v); err != nil {
			// Expand validated everything and the routes were just set,
			// so this only fires on a caller-managed manager invariant.
			return fmt.Errorf("declaring %s: %w", v, err)
		}
	}
	m.ResyncComplete()
	return nil
}
