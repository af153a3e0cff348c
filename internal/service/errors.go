package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BAHUBALISID/smj/internal/numbering"

	"gorm.io/gorm"
)

var (
	ErrValidation              = errors.New("validation failed")
	ErrRateNotFound            = errors.New("rate not found")
	ErrCyclicRateDerivation    = errors.New("cyclic rate derivation")
	ErrRateExists              = errors.New("rate for this metal and purity already exists")
	ErrDuplicateDocumentNumber = errors.New("duplicate document number")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrExchangeNotFound        = errors.New("exchange not found")
	ErrPersistence             = errors.New("persistence failure")
)

// ValidationError lists offending fields. errors.Is(err, ErrValidation) holds.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// fieldErrors accumulates validation problems before the transaction opens.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// PersistenceError wraps a storage failure. errors.Is(err, ErrPersistence)
// holds and Unwrap exposes the driver error.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// persist classifies a repository error. Unique violations on document
// inserts become ErrDuplicateDocumentNumber so the caller can retry.
func persist(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateDocumentNumber)
	}
	return &PersistenceError{Op: op, Err: err}
}

// DuplicateNumberError is a unique violation on an issued document number.
type DuplicateNumberError struct {
	Kind   numbering.Kind
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("%s number %s already exists", e.Kind, e.Number)
}

func (e *DuplicateNumberError) Is(target error) bool { return target == ErrDuplicateDocumentNumber }

// persistDoc is persist for inserts that carry a freshly issued number.
func persistDoc(kind numbering.Kind, number string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateNumberError{Kind: kind, Number: number}
	}
	return persist("insert "+string(kind), err)
}

// classified reports whether err already belongs to the service taxonomy.
func classified(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrRateNotFound, ErrCyclicRateDerivation, ErrRateExists,
		ErrDuplicateDocumentNumber, ErrInvoiceNotFound, ErrExchangeNotFound, ErrPersistence,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// txErr wraps begin/commit failures that escaped the transaction closure.
func txErr(op string, err error) error {
	if err == nil || classified(err) {
		return err
	}
	return persist(op, err)
}
