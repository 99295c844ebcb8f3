package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/verification"
)

type documentRow struct {
	ID           string      `db:"id"`
	StartupID    string      `db:"startup_id"`
	DocumentType string      `db:"document_type"`
	DocumentURL  string      `db:"document_url"`
	Status       string      `db:"status"`
	VerifiedBy   null.String `db:"verified_by"`
	VerifiedAt   null.Time   `db:"verified_at"`
	CreatedAt    null.Time   `db:"created_at"`
}

func (r documentRow) toDocument() verification.Document {
	return verification.Document{
		ID:         r.ID,
		StartupID:  r.StartupID,
		Type:       r.DocumentType,
		URL:        r.DocumentURL,
		Status:     r.Status,
		VerifiedBy: r.VerifiedBy.String,
		VerifiedAt: r.VerifiedAt.Time,
		CreatedAt:  r.CreatedAt.Time,
	}
}

type bankVerificationRow struct {
	ID            string      `db:"id"`
	StartupID     string      `db:"startup_id"`
	BankName      string      `db:"bank_name"`
	AccountNumber string      `db:"account_number"`
	AccountName   string      `db:"account_name"`
	DocumentURL   string      `db:"document_url"`
	Status        string      `db:"status"`
	VerifiedBy    null.String `db:"verified_by"`
	VerifiedAt    null.Time   `db:"verified_at"`
	CreatedAt     null.Time   `db:"created_at"`
}

func (r bankVerificationRow) toBankVerification() verification.BankVerification {
	return verification.BankVerification{
		ID:            r.ID,
		StartupID:     r.StartupID,
		BankName:      r.BankName,
		AccountNumber: r.AccountNumber,
		AccountName:   r.AccountName,
		DocumentURL:   r.DocumentURL,
		Status:        r.Status,
		VerifiedBy:    r.VerifiedBy.String,
		VerifiedAt:    r.VerifiedAt.Time,
		CreatedAt:     r.CreatedAt.Time,
	}
}

type verificationRepository struct {
	exec core.DBExecutor
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(exec core.DBExecutor) *verificationRepository {
	return &verificationRepository{exec: exec}
}

func (repo verificationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

func (repo verificationRepository) CreateDocument(ctx context.Context, doc verification.Document, exec ...core.DBExecutor) (verification.Document, error) {
	doc.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO startup_document (id, startup_id, document_type, document_url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		doc.ID, doc.StartupID, doc.Type, doc.URL, doc.Status, doc.CreatedAt)
	if err != nil {
		return verification.Document{}, errors.Wrap(err, "inserting startup document")
	}
	return doc, nil
}

func (repo verificationRepository) GetDocument(ctx context.Context, id string, exec ...core.DBExecutor) (verification.Document, error) {
	var row documentRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM startup_document WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return verification.Document{}, verification.ErrDocumentNotFound
		}
		return verification.Document{}, errors.Wrap(err, "finding startup document")
	}
	return row.toDocument(), nil
}

func (repo verificationRepository) QueryDocuments(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]verification.Document, error) {
	var rows []documentRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM startup_document WHERE startup_id = $1 ORDER BY created_at DESC`, startupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying startup documents")
	}
	docs := make([]verification.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs, nil
}

func (repo verificationRepository) QueryPendingDocuments(ctx context.Context, exec ...core.DBExecutor) ([]verification.Document, error) {
	var rows []documentRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM startup_document WHERE status = $1 ORDER BY created_at`, verification.DocStatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending documents")
	}
	docs := make([]verification.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.toDocument())
	}
	return docs, nil
}

func (repo verificationRepository) UpdateDocument(ctx context.Context, doc verification.Document, exec ...core.DBExecutor) (verification.Document, error) {
	var row documentRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE startup_document
		 SET document_url = $2, status = $3, verified_by = $4, verified_at = $5
		 WHERE id = $1
		 RETURNING *`,
		doc.ID, doc.URL, doc.Status,
		null.NewString(doc.VerifiedBy, doc.VerifiedBy != ""),
		null.NewTime(doc.VerifiedAt, !doc.VerifiedAt.IsZero()))
	if err != nil {
		if err == sql.ErrNoRows {
			return verification.Document{}, verification.ErrDocumentNotFound
		}
		return verification.Document{}, errors.Wrap(err, "updating startup document")
	}
	return row.toDocument(), nil
}

func (repo verificationRepository) CreateBankVerification(ctx context.Context, bv verification.BankVerification, exec ...core.DBExecutor) (verification.BankVerification, error) {
	bv.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx,
		`INSERT INTO bank_verification (id, startup_id, bank_name, account_number, account_name, document_url, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bv.ID, bv.StartupID, bv.BankName, bv.AccountNumber, bv.AccountName, bv.DocumentURL, bv.Status, bv.CreatedAt)
	if err != nil {
		return verification.BankVerification{}, errors.Wrap(err, "inserting bank verification")
	}
	return bv, nil
}

func (repo verificationRepository) GetBankVerification(ctx context.Context, id string, exec ...core.DBExecutor) (verification.BankVerification, error) {
	var row bankVerificationRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`SELECT * FROM bank_verification WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return verification.BankVerification{}, verification.ErrBankNotFound
		}
		return verification.BankVerification{}, errors.Wrap(err, "finding bank verification")
	}
	return row.toBankVerification(), nil
}

func (repo verificationRepository) QueryBankVerifications(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]verification.BankVerification, error) {
	var rows []bankVerificationRow
	err := repo.getExec(exec).SelectContext(ctx, &rows,
		`SELECT * FROM bank_verification WHERE startup_id = $1 ORDER BY created_at DESC`, startupID)
	if err != nil {
		return nil, errors.Wrap(err, "querying bank verifications")
	}
	bvs := make([]verification.BankVerification, 0, len(rows))
	for _, row := range rows {
		bvs = append(bvs, row.toBankVerification())
	}
	return bvs, nil
}

func (repo verificationRepository) UpdateBankVerification(ctx context.Context, bv verification.BankVerification, exec ...core.DBExecutor) (verification.BankVerification, error) {
	var row bankVerificationRow
	err := repo.getExec(exec).GetContext(ctx, &row,
		`UPDATE bank_verification
		 SET bank_name = $2, account_number = $3, account_name = $4,
		     document_url = $5, status = $6, verified_by = $7, verified_at = $8
		 WHERE id = $1
		 RETURNING *`,
		bv.ID, bv.BankName, bv.AccountNumber, bv.AccountName,
		bv.DocumentURL, bv.Status,
		null.NewString(bv.VerifiedBy, bv.VerifiedBy != ""),
		null.NewTime(bv.VerifiedAt, !bv.VerifiedAt.IsZero()))
	if err != nil {
		if err == sql.ErrNoRows {
			return verification.BankVerification{}, verification.ErrBankNotFound
		}
		return verification.BankVerification{}, errors.Wrap(err, "updating bank verification")
	}
	return row.toBankVerification(), nil
}
