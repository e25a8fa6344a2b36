package enums

import "fmt"

// StoreDriver selects the blob backend for document persistence.
type StoreDriver string

const (
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverFile   StoreDriver = "file"
	StoreDriverSQLite StoreDriver = "sqlite"
)

var validStoreDrivers = []StoreDriver{
	StoreDriverMemory,
	StoreDriverFile,
	StoreDriverSQLite,
}

// String implements fmt.Stringer.
func (d StoreDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known StoreDriver.
func (d StoreDriver) IsValid() bool {
	for _, candidate := range validStoreDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseStoreDriver converts raw input into a StoreDriver.
func ParseStoreDriver(value string) (StoreDriver, error) {
	for _, candidate := range validStoreDrivers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store driver %q", value)
}
