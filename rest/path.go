// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"strings"
)

type segment struct {
	name  string
	param bool
	opts  []ParameterOption
}

func (s segment) String() string {
	if s.param {
		return "{" + s.name + "}"
	}
	return strings.Trim(s.name, "/")
}

// Path is a route template which may contain named parameters.
//
//	rest.BasePath("/api/blogs").Param("id", rest.Regex(digits))
//	// /api/blogs/{id}
type Path []segment

// BasePath starts a [Path] at prefix.
func BasePath(prefix string) Path {
	return Path{{name: prefix}}
}

// Segment returns a copy of p followed by the literal s.
func (p Path) Segment(s string) Path {
	return p.with(segment{name: s})
}

// Param returns a copy of p followed by the parameter name. Its value
// is available to handlers through [PathParamValue] once every opt accepts it.
func (p Path) Param(name string, opts ...ParameterOption) Path {
	return p.with(segment{name: name, param: true, opts: opts})
}

func (p Path) with(s segment) Path {
	return append(p[:len(p):len(p)], s)
}

// params lists the parameters of p in order.
func (p Path) params() []segment {
	var ps []segment
	for _, s := range p {
		if s.param {
			ps = append(ps, s)
		}
	}
	return ps
}

// String renders p as a chi route pattern.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, s := range p {
		str := s.String()
		if str == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(str)
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}
