package engine

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/jinzhu/copier"
)

type mapKey struct {
	src reflect.Type
	dst reflect.Type
}

// Mapper converts between domain objects and DTOs. Conversions registered
// with CreateMap win; anything else is copied field by field.
type Mapper struct {
	mu   sync.RWMutex
	maps map[mapKey]func(src, dst any) error
}

// NewMapper creates an empty mapper
func NewMapper() *Mapper {
	return &Mapper{maps: make(map[mapKey]func(src, dst any) error)}
}

// CreateMap registers the conversion from S to D, replacing any previous one
func CreateMap[S, D any](m *Mapper, fn func(src *S, dst *D) error) {
	key := mapKey{
		src: reflect.TypeOf((*S)(nil)).Elem(),
		dst: reflect.TypeOf((*D)(nil)).Elem(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[key] = func(src, dst any) error {
		return fn(src.(*S), dst.(*D))
	}
}

// HasMap reports whether a conversion from src's type to dst's type is registered
func (m *Mapper) HasMap(src, dst any) bool {
	_, ok := m.lookup(reflect.TypeOf(src), reflect.TypeOf(dst))
	return ok
}

// Map converts src into dst. dst must be a non-nil pointer.
func (m *Mapper) Map(src, dst any) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("mapper destination must be a non-nil pointer, got %T", dst)
	}
	sv := reflect.ValueOf(src)
	if !sv.IsValid() || (sv.Kind() == reflect.Ptr && sv.IsNil()) {
		return fmt.Errorf("mapper source cannot be nil")
	}

	fn, ok := m.lookup(sv.Type(), dv.Type())
	if !ok {
		if err := copier.Copy(dst, src); err != nil {
			return fmt.Errorf("failed to copy %T to %T: %w", src, dst, err)
		}
		return nil
	}

	if sv.Kind() != reflect.Ptr {
		p := reflect.New(sv.Type())
		p.Elem().Set(sv)
		sv = p
	}
	return fn(sv.Interface(), dst)
}

func (m *Mapper) lookup(src, dst reflect.Type) (func(src, dst any) error, bool) {
	if src == nil || dst == nil {
		return nil, false
	}
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}
	if dst.Kind() == reflect.Ptr {
		dst = dst.Elem()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.maps[mapKey{src: src, dst: dst}]
	return fn, ok
}

// MapTo converts src into a new D
func MapTo[D any](m *Mapper, src any) (*D, error) {
	dst := new(D)
	if err := m.Map(src, dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// MapSlice converts every element of src into a D
func MapSlice[S, D any](m *Mapper, src []S) ([]D, error) {
	out := make([]D, 0, len(src))
	for i := range src {
		var d D
		if err := m.Map(src[i], &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
