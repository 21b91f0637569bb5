// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Verbose     bool `doc:"trace each stage of assembly"`
	SourceMap   bool `doc:"write a source map for each object file"`
	DumpSymbols bool `doc:"print the symbol table after assembly"`
	Disassemble bool `doc:"print a disassembly after assembly"`
	Quiet       bool `doc:"suppress progress messages"`
	Width       int  `doc:"width of file separators (0 = terminal width)"`
}

func newSettings() *settings {
	return &settings{
		Verbose:     false,
		SourceMap:   false,
		DumpSymbols: false,
		Disassemble: false,
		Quiet:       false,
		Width:       0,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		s := fmt.Sprintf("    %-12s %v", f.name, v)
		fmt.Fprintf(w, "%-24s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if (f.kind == reflect.String && vIn.Type().Kind() != reflect.String) ||
		(f.kind != reflect.String && vIn.Type().Kind() == reflect.String) ||
		!vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	vInConverted := vIn.Convert(f.typ)

	vOut := reflect.ValueOf(s).Elem().Field(f.index).Addr().Elem()
	vOut.Set(vInConverted)

	return nil
}

// SetString parses an assignment of the form key=value and applies it.
// Keys may be abbreviated to any unambiguous prefix.
func (s *settings) SetString(assignment string) error {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("setting '%s' must have the form key=value", assignment)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)

	switch s.Kind(key) {
	case reflect.Invalid:
		return fmt.Errorf("setting '%s' not found", key)
	case reflect.String:
		return s.Set(key, value)
	case reflect.Bool:
		v, err := stringToBool(value)
		if err != nil {
			return err
		}
		return s.Set(key, v)
	default:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid number '%s'", value)
		}
		return s.Set(key, v)
	}
}
