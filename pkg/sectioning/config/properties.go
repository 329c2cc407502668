package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var errNegative = errors.New("must not be negative")

// ConfigurationError is returned when a property is present but its
// value cannot be used.
type ConfigurationError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid value %q for property %s: %s", e.Value, e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Properties is a flat set of solver parameters keyed by dotted names
// such as Neighbour.MaxValues.
type Properties struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewProperties() *Properties {
	return &Properties{values: map[string]string{}}
}

// Load reads properties from a YAML file.
func Load(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening properties file (%s): %w", path, err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing properties file (%s): %w", path, err)
	}
	return p, nil
}

// Parse reads properties from a YAML document. Nested mappings are
// flattened, so
//
//	Neighbour:
//	  MaxValues: 10
//
// is the same as "Neighbour.MaxValues: 10".
func Parse(r io.Reader) (*Properties, error) {
	var raw map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return NewProperties(), nil
		}
		return nil, err
	}
	p := NewProperties()
	if err := p.merge("", raw); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Properties) merge(prefix string, raw map[string]interface{}) error {
	for k, v := range raw {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch value := v.(type) {
		case map[string]interface{}:
			if err := p.merge(key, value); err != nil {
				return err
			}
		case []interface{}:
			return fmt.Errorf("property %s: lists are not supported", key)
		case nil:
			p.Set(key, "")
		default:
			p.Set(key, fmt.Sprint(value))
		}
	}
	return nil
}

// Set stores a single property, replacing any previous value.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
}

// SetAll parses key=value pairs, as given on the command line.
func (p *Properties) SetAll(pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid property %q: expected key=value", pair)
		}
		p.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return nil
}

// Get returns the raw value of a property.
func (p *Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the names of all properties in lexical order.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Properties) lookup(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Int returns the integer value of key, or def when it is not set.
func (p *Properties) Int(key string, def int) (int, error) {
	v, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: v, Err: err}
	}
	return i, nil
}

// NonNegativeInt is Int that also rejects values below zero.
func (p *Properties) NonNegativeInt(key string, def int) (int, error) {
	i, err := p.Int(key, def)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		v, _ := p.lookup(key)
		return 0, &ConfigurationError{Key: key, Value: v, Err: errNegative}
	}
	return i, nil
}

// Duration reads a non-negative number of milliseconds.
func (p *Properties) Duration(key string, def time.Duration) (time.Duration, error) {
	ms, err := p.NonNegativeInt(key, int(def/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
