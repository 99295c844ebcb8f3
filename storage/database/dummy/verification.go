package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/oosplatform/oos/core"
	"github.com/oosplatform/oos/core/verification"
)

type verificationRepository struct {
	db *verificationTable
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(db *DB) verification.Repository {
	return &verificationRepository{db: db.verifications}
}

func (repo *verificationRepository) CreateDocument(ctx context.Context, doc verification.Document, exec ...core.DBExecutor) (verification.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc.ID = uuid.New().String()
	repo.db.documents[doc.ID] = &doc
	return doc, nil
}

func (repo *verificationRepository) GetDocument(ctx context.Context, id string, exec ...core.DBExecutor) (verification.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.documents[id]; ok {
		return *doc, nil
	}
	return verification.Document{}, verification.ErrDocumentNotFound
}

func (repo *verificationRepository) QueryDocuments(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]verification.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var docs []verification.Document
	for _, doc := range repo.db.documents {
		if doc.StartupID == startupID {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

func (repo *verificationRepository) QueryPendingDocuments(ctx context.Context, exec ...core.DBExecutor) ([]verification.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var docs []verification.Document
	for _, doc := range repo.db.documents {
		if doc.Status == verification.DocStatusPending {
			docs = append(docs, *doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (repo *verificationRepository) UpdateDocument(ctx context.Context, doc verification.Document, exec ...core.DBExecutor) (verification.Document, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.documents[doc.ID]; !ok {
		return verification.Document{}, verification.ErrDocumentNotFound
	}
	repo.db.documents[doc.ID] = &doc
	return doc, nil
}

func (repo *verificationRepository) CreateBankVerification(ctx context.Context, bv verification.BankVerification, exec ...core.DBExecutor) (verification.BankVerification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	bv.ID = uuid.New().String()
	repo.db.banks[bv.ID] = &bv
	return bv, nil
}

func (repo *verificationRepository) GetBankVerification(ctx context.Context, id string, exec ...core.DBExecutor) (verification.BankVerification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if bv, ok := repo.db.banks[id]; ok {
		return *bv, nil
	}
	return verification.BankVerification{}, verification.ErrBankNotFound
}

func (repo *verificationRepository) QueryBankVerifications(ctx context.Context, startupID string, exec ...core.DBExecutor) ([]verification.BankVerification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var bvs []verification.BankVerification
	for _, bv := range repo.db.banks {
		if bv.StartupID == startupID {
			bvs = append(bvs, *bv)
		}
	}
	sort.Slice(bvs, func(i, j int) bool { return bvs[i].CreatedAt.After(bvs[j].CreatedAt) })
	return bvs, nil
}

func (repo *verificationRepository) UpdateBankVerification(ctx context.Context, bv verification.BankVerification, exec ...core.DBExecutor) (verification.BankVerification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.banks[bv.ID]; !ok {
		return verification.BankVerification{}, verification.ErrBankNotFound
	}
	repo.db.banks[bv.ID] = &bv
	return bv, nil
}
