package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"

	"go-contact-review-backend/internal/domain"
	"go-contact-review-backend/pkg/apperror"
	"go-contact-review-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// PreviewLimit caps how many contacts the upload response echoes back.
const PreviewLimit = 5

var (
	ErrMalformedFile   = errors.New("payload is not parseable as CSV")
	ErrNoValidContacts = errors.New("no valid contacts found in CSV")
)

type ingestUsecase struct {
	store    domain.SessionRepository
	validate *validator.Validate
}

func NewIngestUsecase(store domain.SessionRepository, validate *validator.Validate) domain.IngestUsecase {
	return &ingestUsecase{
		store:    store,
		validate: validate,
	}
}

// Ingest parses the uploaded payload, validates every data row and creates a
// review session from the survivors. Rejected rows are dropped; only the
// per-reason counts surface to the caller.
func (u *ingestUsecase) Ingest(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, apperror.BadRequest("File must be a CSV")
	}

	rows, err := parseRows(data)
	if err != nil {
		logger.Log.Error("failed to parse CSV upload", "filename", filename, "error", err)
		return nil, apperror.New(http.StatusInternalServerError, "Error parsing CSV file", ErrMalformedFile)
	}

	contacts := make([]domain.Contact, 0, len(rows))
	skippedReasons := make(map[string]int)
	for _, row := range rows {
		contact, err := domain.NewContact(row)
		if err != nil {
			skippedReasons[err.Error()]++
			continue
		}
		// Constructor output re-checked against the struct tags; a failure
		// here is a programming error, not bad input.
		if err := u.validate.Struct(contact); err != nil {
			logger.Log.Error("constructed contact failed struct validation",
				"email", contact.Email, "error", err)
			skippedReasons[err.Error()]++
			continue
		}
		contacts = append(contacts, *contact)
	}

	if len(contacts) == 0 {
		return nil, apperror.New(http.StatusBadRequest, "No valid contacts found in CSV", ErrNoValidContacts)
	}

	sessionID, err := u.store.Create(ctx, contacts)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	skipped := 0
	for _, n := range skippedReasons {
		skipped += n
	}
	if skipped == 0 {
		skippedReasons = nil
	}
	logger.Log.Info("created review session",
		"session_id", sessionID, "contacts", len(contacts), "skipped", skipped)

	preview := contacts
	if len(preview) > PreviewLimit {
		preview = preview[:PreviewLimit]
	}

	return &domain.UploadResult{
		SessionID:      sessionID,
		TotalContacts:  len(contacts),
		Skipped:        skipped,
		SkippedReasons: skippedReasons,
		Contacts:       preview,
	}, nil
}

// parseRows reads the payload as a header-keyed CSV. Column lookup is by
// header name; rows shorter than the header simply read missing columns as
// empty rather than failing the whole file.
func parseRows(data []byte) ([]domain.RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	cell := func(record []string, column string) string {
		idx, ok := columns[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []domain.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.RawRow{
			Name:        cell(record, domain.ColumnName),
			Email:       cell(record, domain.ColumnEmail),
			LinkedInURL: cell(record, domain.ColumnLinkedIn),
			FirstName:   cell(record, domain.ColumnFirstName),
			LastName:    cell(record, domain.ColumnLastName),
		})
	}
	return rows, nil
}
