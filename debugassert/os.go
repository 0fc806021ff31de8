package debugassert

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrNotPointer is returned by SetConfigFromEnvVars when s is not a pointer to a struct.
var ErrNotPointer = errors.New("config must be a pointer to a struct")

// ErrInvalidEnvValue is returned by SetConfigFromEnvVars when a variable cannot be parsed.
var ErrInvalidEnvValue = errors.New("invalid environment variable value")

var durationType = reflect.TypeOf(time.Duration(0))

// GetenvOrDefault returns the trimmed value of key, or defaultValue when it is unset or blank.
func GetenvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	return value
}

// GetenvBoolOrDefault returns key parsed as a bool, or defaultValue.
func GetenvBoolOrDefault(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(GetenvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}

	return value
}

// GetenvIntOrDefault returns key parsed as an int64, or defaultValue.
func GetenvIntOrDefault(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(GetenvOrDefault(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// GetenvDurationOrDefault returns key parsed as a duration, or defaultValue.
// Besides time.ParseDuration syntax a bare integer is read as seconds.
func GetenvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value, err := parseDuration(GetenvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}

	return value
}

// SetConfigFromEnvVars fills the fields of the struct s points to from the
// environment variables named by their `env` tags. Supported field types are
// string, bool, signed integers and time.Duration. Unset variables leave the
// zero value.
//
//	type Config struct {
//		Delay time.Duration `env:"DEBUGASSERT_DELAY"`
//	}
func SetConfigFromEnvVars(s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrNotPointer
	}

	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		key, ok := field.Tag.Lookup("env")
		if !ok || key == "" || !field.IsExported() {
			continue
		}

		raw := GetenvOrDefault(key, "")
		target := v.Field(i)

		if err := setField(target, raw); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidEnvValue, key, raw, err)
		}
	}

	return nil
}

func setField(target reflect.Value, raw string) error {
	if raw == "" {
		target.SetZero()
		return nil
	}

	if target.Type() == durationType {
		d, err := parseDuration(raw)
		if err != nil {
			return err
		}

		target.SetInt(int64(d))

		return nil
	}

	switch target.Kind() {
	case reflect.String:
		target.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}

		target.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, target.Type().Bits())
		if err != nil {
			return err
		}

		target.SetInt(n)
	default:
		return fmt.Errorf("unsupported field type %s", target.Type())
	}

	return nil
}

func parseDuration(raw string) (time.Duration, error) {
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return time.ParseDuration(raw)
}
