package store

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts state to and from its persisted string form.
type Codec[V any] interface {
	Encode(v V) (string, error)
	Decode(data string) (V, error)
}

// JSONCodec is the default codec.
type JSONCodec[V any] struct{}

// Encode implements Codec.
func (JSONCodec[V]) Encode(v V) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode implements Codec.
func (JSONCodec[V]) Decode(data string) (V, error) {
	var v V
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

// YAMLCodec persists state as YAML, which keeps durable records readable
// when they are edited by hand.
type YAMLCodec[V any] struct{}

// Encode implements Codec.
func (YAMLCodec[V]) Encode(v V) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode implements Codec.
func (YAMLCodec[V]) Decode(data string) (V, error) {
	var v V
	err := yaml.Unmarshal([]byte(data), &v)
	return v, err
}

// CodecFuncs builds a Codec from two functions.
type CodecFuncs[V any] struct {
	EncodeFunc func(V) (string, error)
	DecodeFunc func(string) (V, error)
}

// Encode implements Codec.
func (c CodecFuncs[V]) Encode(v V) (string, error) {
	return c.EncodeFunc(v)
}

// Decode implements Codec.
func (c CodecFuncs[V]) Decode(data string) (V, error) {
	return c.DecodeFunc(data)
}
