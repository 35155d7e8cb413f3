package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// ApplyDefaults fills every zero-valued field carrying a `default` tag.
// Nested structs are walked recursively.
func ApplyDefaults(cfg any) error {
	v, err := structValue(cfg)
	if err != nil {
		return err
	}
	return walk(v, func(field reflect.Value, tag reflect.StructTag) error {
		def, ok := tag.Lookup("default")
		if !ok || !field.IsZero() {
			return nil
		}
		return setFieldValue(field, def, tag.Get("separator"))
	})
}

// OverrideFromEnv sets every field whose `env` tag names a variable present in
// the environment. Keys are namespaced with prefix (see GetEnvKeyPrefix).
// Fields tagged `required:"true"` must be non-zero once overrides are applied.
func OverrideFromEnv(prefix string, cfg any) error {
	v, err := structValue(cfg)
	if err != nil {
		return err
	}
	return walk(v, func(field reflect.Value, tag reflect.StructTag) error {
		envKey := tag.Get("env")
		if envKey == "" {
			return nil
		}
		ek := GetEnvKeyPrefix(prefix, envKey)
		if value, ok := os.LookupEnv(ek); ok && value != "" {
			if err := setFieldValue(field, value, tag.Get("separator")); err != nil {
				return fmt.Errorf("%s: %w", ek, err)
			}
		}
		if tag.Get("required") == "true" && field.IsZero() {
			return fmt.Errorf("required environment variable %s is not set", ek)
		}
		return nil
	})
}

func structValue(cfg any) (reflect.Value, error) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("cfg must be a pointer to a struct")
	}
	return v.Elem(), nil
}

func walk(v reflect.Value, fn func(reflect.Value, reflect.StructTag) error) error {
	t := v.Type()
	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := walk(field, fn); err != nil {
				return fmt.Errorf("%s: %w", fieldType.Name, err)
			}
			continue
		}

		if err := fn(field, fieldType.Tag); err != nil {
			return fmt.Errorf("error setting field %s: %w", fieldType.Name, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value based on its type
func setFieldValue(field reflect.Value, value, separator string) error {
	if value == "" {
		return nil // leave as zero value
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			duration, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("cannot parse duration: %w", err)
			}
			field.SetInt(int64(duration))
			return nil
		}
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("cannot parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("cannot parse float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool: %w", err)
		}
		field.SetBool(boolVal)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		if separator == "" {
			separator = ","
		}
		parts := strings.Split(value, separator)
		stringSlice := make([]string, len(parts))
		for i, part := range parts {
			stringSlice[i] = strings.TrimSpace(part)
		}
		field.Set(reflect.ValueOf(stringSlice))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
