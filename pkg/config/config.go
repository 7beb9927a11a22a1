package config

import (
	"fmt"
	"reflect"
)

type Config interface {
	Validate() error
}

// ValidateConfig calls Validate on every field of the struct pointed to by cfg
// that implements Config. Nil pointer fields are skipped, value fields are
// validated through their address so defaults filled in by Validate stick.
func ValidateConfig[T any](cfg T) error {
	return rangeField(cfg, func(name string, c Config) error {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("failed validate config: %w, key: %s", err, name)
		}
		return nil
	})
}

// rangeField iterates over the fields of a struct and calls the given function
func rangeField(ptr any, fn func(string, Config) error) error {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config must be a non-nil struct pointer, got %T", ptr)
	}
	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanInterface() {
			continue
		}

		var iface any
		switch f.Kind() {
		case reflect.Pointer, reflect.Interface:
			if f.IsNil() {
				continue
			}
			iface = f.Interface()
		case reflect.Struct:
			if !f.CanAddr() {
				continue
			}
			iface = f.Addr().Interface()
		default:
			continue
		}

		if c, ok := iface.(Config); ok {
			if err := fn(v.Type().Field(i).Name, c); err != nil {
				return err
			}
		}
	}
	return nil
}
