package kbi

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypeNamer lets a payload choose the type name recorded in the document
// store. Without it the Go package path and type name are used.
type TypeNamer interface {
	PayloadTypeName() string
}

// PayloadType describes how instance payloads of one kind are stored and
// decoded. The zero value matches a stored payload of any type and decodes
// it into generic JSON values.
type PayloadType struct {
	// Name is the type descriptor stored with each document.
	Name string

	goType reflect.Type
}

// PayloadTypeOf describes the dynamic type of v.
func PayloadTypeOf(v any) PayloadType {
	t := reflect.TypeOf(v)
	if t == nil {
		return PayloadType{}
	}
	return newPayloadType(t)
}

// PayloadTypeFor describes T.
func PayloadTypeFor[T any]() PayloadType {
	return newPayloadType(reflect.TypeOf((*T)(nil)).Elem())
}

func newPayloadType(t reflect.Type) PayloadType {
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if namer, ok := reflect.New(base).Interface().(TypeNamer); ok {
		return PayloadType{Name: namer.PayloadTypeName(), goType: t}
	}

	name := base.String()
	if base.Name() != "" && base.PkgPath() != "" {
		name = base.PkgPath() + "." + base.Name()
	}
	return PayloadType{Name: name, goType: t}
}

// String returns the type descriptor.
func (p PayloadType) String() string {
	return p.Name
}

// decode unmarshals body into a new value of the payload's Go type.
func (p PayloadType) decode(body []byte) (any, error) {
	if p.goType == nil {
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("kbi: failed to decode payload: %w", err)
		}
		return v, nil
	}

	ptr := reflect.New(p.goType)
	if err := json.Unmarshal(body, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("kbi: failed to decode %s payload: %w", p.Name, err)
	}
	return ptr.Elem().Interface(), nil
}

// RegisterPayloadType records pt as the payload type for instances of
// typeName without writing anything. AddInstance records types the same way.
func (c *Client) RegisterPayloadType(typeName string, pt PayloadType) {
	c.registry[typeName] = pt
}

// RegisteredPayloadType returns the payload type recorded for typeName.
func (c *Client) RegisteredPayloadType(typeName string) (PayloadType, bool) {
	pt, ok := c.registry[typeName]
	return pt, ok
}
