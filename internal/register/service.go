package register

import (
	"context"
	"time"

	"staffregister/internal/metrics"
)

// Table is the append-only tabular store. Rows returns every row including
// the header row first.
type Table interface {
	Rows(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
}

// Serializer runs fn as a critical section.
type Serializer interface {
	Do(ctx context.Context, fn func(context.Context) error) error
}

// Service runs the submission write path.
type Service struct {
	table      Table
	validator  *Validator
	signatures *SignatureProcessor
	serial     Serializer
}

// NewService creates a service. serial may be nil, in which case the
// duplicate check and append are not serialized.
func NewService(table Table, validator *Validator, signatures *SignatureProcessor, serial Serializer) *Service {
	if validator == nil {
		validator = NewValidator(Rules{})
	}
	return &Service{table: table, validator: validator, signatures: signatures, serial: serial}
}

// Submit validates, checks for a duplicate identifier, stores the signature
// image and appends the record. The signature image is only written once
// the identifier has been accepted.
func (s *Service) Submit(ctx context.Context, sub Submission) (Record, error) {
	rec, err := s.validator.Validate(sub)
	if err != nil {
		return s.done(Record{}, err)
	}
	sig, err := DecodeSignature(rec.SignatureReference)
	if err != nil {
		return s.done(Record{}, err)
	}

	critical := func(ctx context.Context) error {
		dup, err := s.IsRegistered(ctx, rec.Identifier)
		if err != nil {
			return err
		}
		if dup {
			return &DuplicateSubmissionError{Identifier: rec.Identifier}
		}
		ref, err := s.signatures.Reference(ctx, sig)
		if err != nil {
			return err
		}
		rec.SignatureReference = ref
		return s.Append(ctx, rec)
	}

	if s.serial == nil {
		err = critical(ctx)
	} else {
		err = s.serial.Do(ctx, critical)
		if err != nil && !isSubmissionError(err) {
			err = &PersistenceError{Op: "lock", Err: err}
		}
	}
	if err != nil {
		return s.done(Record{}, err)
	}
	return s.done(rec, nil)
}

// IsRegistered reads the whole table and looks for identifier.
func (s *Service) IsRegistered(ctx context.Context, identifier string) (bool, error) {
	start := time.Now()
	rows, err := s.table.Rows(ctx)
	metrics.ObserveStoreOp("read", start)
	if err != nil {
		return false, &PersistenceError{Op: "read", Err: err}
	}
	return HasIdentifier(rows, identifier), nil
}

// Append writes rec as one row in column order.
func (s *Service) Append(ctx context.Context, rec Record) error {
	start := time.Now()
	err := s.table.AppendRow(ctx, rec.Row())
	metrics.ObserveStoreOp("append", start)
	if err != nil {
		return &PersistenceError{Op: "append", Err: err}
	}
	return nil
}

func (s *Service) done(rec Record, err error) (Record, error) {
	status, _ := Outcome(err)
	metrics.Submissions.WithLabelValues(string(status)).Inc()
	return rec, err
}
