// Package hydrate maps plain result rows onto caller structs. It lives
// entirely outside the query core: the builder compiles and executes
// correctly without it, returning rows as plain mappings.
package hydrate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/girardinsamuel/quarry/query/builder"
)

// Into copies a row's values into the fields of dest, which must be a
// pointer to a struct. Columns are matched by the `db` tag, falling back to
// the snake_case of the field name. Columns without a matching field are
// ignored.
func Into(row builder.Row, dest interface{}) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		column := field.Tag.Get("db")
		if column == "-" {
			continue
		}
		if column == "" {
			column = toSnakeCase(field.Name)
		}

		value, ok := row[column]
		if !ok {
			continue
		}
		if value == nil {
			if fieldValue.Kind() == reflect.Ptr {
				fieldValue.Set(reflect.Zero(fieldValue.Type()))
			}
			continue
		}
		if err := setField(fieldValue, value); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// Slice hydrates a batch of rows into dest, a pointer to a slice of structs
// or struct pointers.
func Slice(rows []builder.Row, dest interface{}) error {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice")
	}
	sliceValue := v.Elem()
	elemType := sliceValue.Type().Elem()
	pointerElems := elemType.Kind() == reflect.Ptr
	if pointerElems {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("dest elements must be structs")
	}

	for _, row := range rows {
		elem := reflect.New(elemType)
		if err := Into(row, elem.Interface()); err != nil {
			return err
		}
		if pointerElems {
			sliceValue = reflect.Append(sliceValue, elem)
		} else {
			sliceValue = reflect.Append(sliceValue, elem.Elem())
		}
	}
	v.Elem().Set(sliceValue)
	return nil
}

func setField(fieldValue reflect.Value, value interface{}) error {
	fieldType := fieldValue.Type()

	if fieldType.Kind() == reflect.Ptr {
		elem := reflect.New(fieldType.Elem()).Elem()
		if err := setField(elem, value); err != nil {
			return err
		}
		fieldValue.Set(elem.Addr())
		return nil
	}

	valueValue := reflect.ValueOf(value)
	if !valueValue.IsValid() {
		return nil
	}
	if valueValue.Type().AssignableTo(fieldType) {
		fieldValue.Set(valueValue)
		return nil
	}
	if valueValue.Type().ConvertibleTo(fieldType) {
		fieldValue.Set(valueValue.Convert(fieldType))
		return nil
	}
	return fmt.Errorf("cannot convert %s to %s", valueValue.Type(), fieldType)
}

// toSnakeCase converts PascalCase to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
