package values

import (
	"io"
	"time"
)

func Bool(bag Bag, keys ...string) (bool, error) {
	return DefaultReader.Bool(bag, keys...)
}

func BoolOrNil(bag Bag, keys ...string) (*bool, error) {
	return DefaultReader.BoolOrNil(bag, keys...)
}

func Float(bag Bag, keys ...string) (float64, error) {
	return DefaultReader.Float(bag, keys...)
}

func FloatOrNil(bag Bag, keys ...string) (*float64, error) {
	return DefaultReader.FloatOrNil(bag, keys...)
}

func Int(bag Bag, keys ...string) (int, error) {
	return DefaultReader.Int(bag, keys...)
}

func IntOrNil(bag Bag, keys ...string) (*int, error) {
	return DefaultReader.IntOrNil(bag, keys...)
}

func String(bag Bag, keys ...string) (string, error) {
	return DefaultReader.String(bag, keys...)
}

func StringOrNil(bag Bag, keys ...string) (*string, error) {
	return DefaultReader.StringOrNil(bag, keys...)
}

func Array(bag Bag, keys ...string) (map[string]any, error) {
	return DefaultReader.Array(bag, keys...)
}

func ArrayOrNil(bag Bag, keys ...string) (map[string]any, error) {
	return DefaultReader.ArrayOrNil(bag, keys...)
}

func List(bag Bag, keys ...string) ([]any, error) {
	return DefaultReader.List(bag, keys...)
}

func ListOrNil(bag Bag, keys ...string) ([]any, error) {
	return DefaultReader.ListOrNil(bag, keys...)
}

func StringMap(bag Bag, keys ...string) (map[string]string, error) {
	return DefaultReader.StringMap(bag, keys...)
}

func StringMapOrNil(bag Bag, keys ...string) (map[string]string, error) {
	return DefaultReader.StringMapOrNil(bag, keys...)
}

func Time(bag Bag, keys ...string) (time.Time, error) {
	return DefaultReader.Time(bag, keys...)
}

func TimeOrNil(bag Bag, keys ...string) (*time.Time, error) {
	return DefaultReader.TimeOrNil(bag, keys...)
}

func Resource(bag Bag, keys ...string) (io.Closer, error) {
	return DefaultReader.Resource(bag, keys...)
}

func ResourceOrNil(bag Bag, keys ...string) (io.Closer, error) {
	return DefaultReader.ResourceOrNil(bag, keys...)
}

func Object[T any](bag Bag, keys ...string) (T, error) {
	return ObjectFrom[T](DefaultReader, bag, keys...)
}

func ObjectOrNil[T any](bag Bag, keys ...string) (*T, error) {
	return ObjectOrNilFrom[T](DefaultReader, bag, keys...)
}

func ToArray(v any) (map[string]any, error) {
	return DefaultReader.ToArray(v)
}

func ToStringMap(v any) (map[string]string, error) {
	return DefaultReader.ToStringMap(v)
}
