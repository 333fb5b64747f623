package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type documentRepository struct {
	access access
}

func (r *documentRepository) Create(_ context.Context, doc *domain.Document) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.subfolders[doc.SubfolderID]; !ok {
			return domain.NotFound("create document", "subfolder", doc.SubfolderID)
		}
		if _, ok := st.documents[doc.ID]; ok {
			return fmt.Errorf("create document: id %s already exists", doc.ID)
		}
		for _, existing := range st.documents {
			if existing.SubfolderID == doc.SubfolderID && existing.Type == doc.Type {
				return fmt.Errorf("create document: subfolder %s already holds type %s", doc.SubfolderID, doc.Type)
			}
		}
		st.documents[doc.ID] = *doc
		return nil
	})
}

func (r *documentRepository) GetByID(_ context.Context, id string) (*domain.Document, error) {
	var out domain.Document
	err := r.access(false, func(st *state) error {
		doc, ok := st.documents[id]
		if !ok {
			return domain.NotFound("get document", "document", id)
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LockByIDs keeps the requested order so the first missing id is the one reported.
func (r *documentRepository) LockByIDs(_ context.Context, ids []string) ([]domain.Document, error) {
	var out []domain.Document
	err := r.access(false, func(st *state) error {
		out = make([]domain.Document, 0, len(ids))
		for _, id := range ids {
			doc, ok := st.documents[id]
			if !ok {
				return domain.NotFound("lock documents", "document", id)
			}
			out = append(out, doc)
		}
		return nil
	})
	return out, err
}

func (r *documentRepository) ListBySubfolder(_ context.Context, subfolderID string) ([]domain.Document, error) {
	var out []domain.Document
	err := r.access(false, func(st *state) error {
		out = documentsOf(st, subfolderID)
		return nil
	})
	return out, err
}

func (r *documentRepository) LockBySubfolder(ctx context.Context, subfolderID string) ([]domain.Document, error) {
	return r.ListBySubfolder(ctx, subfolderID)
}

func (r *documentRepository) Update(_ context.Context, doc *domain.Document, expected domain.DocumentStatus) error {
	return r.access(true, func(st *state) error {
		current, ok := st.documents[doc.ID]
		if !ok {
			return domain.NotFound("update document", "document", doc.ID)
		}
		if current.Status != expected {
			return &domain.TransitionError{
				Entity:  "document",
				ID:      doc.ID,
				Current: string(current.Status),
				Event:   "update",
				Allowed: []string{string(expected)},
			}
		}
		st.documents[doc.ID] = *doc
		return nil
	})
}

func (r *documentRepository) ExpireApproved(_ context.Context, now time.Time) ([]domain.Document, error) {
	var out []domain.Document
	err := r.access(true, func(st *state) error {
		ids := make([]string, 0)
		for id, doc := range st.documents {
			if doc.ExpiredAt(now) {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		out = make([]domain.Document, 0, len(ids))
		for _, id := range ids {
			doc := st.documents[id]
			if err := doc.Expire(now); err != nil {
				return err
			}
			st.documents[id] = doc
			out = append(out, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func documentsOf(st *state, subfolderID string) []domain.Document {
	out := make([]domain.Document, 0)
	for _, doc := range st.documents {
		if doc.SubfolderID == subfolderID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type subfolderRepository struct {
	access access
}

func (r *subfolderRepository) Create(_ context.Context, sf *domain.Subfolder) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.folders[sf.StartupFolderID]; !ok {
			return domain.NotFound("create subfolder", "startup folder", sf.StartupFolderID)
		}
		for _, existing := range st.subfolders {
			if existing.StartupFolderID == sf.StartupFolderID && existing.Category == sf.Category && existing.EntityID == sf.EntityID {
				return &domain.LinkConflictError{StartupFolderID: sf.StartupFolderID, EntityID: sf.EntityID, Category: sf.Category}
			}
		}
		st.subfolders[sf.ID] = copySubfolder(*sf)
		return nil
	})
}

func (r *subfolderRepository) GetByID(_ context.Context, id string) (*domain.Subfolder, error) {
	var out domain.Subfolder
	err := r.access(false, func(st *state) error {
		sf, ok := st.subfolders[id]
		if !ok {
			return domain.NotFound("get subfolder", "subfolder", id)
		}
		out = copySubfolder(sf)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *subfolderRepository) LockByID(ctx context.Context, id string) (*domain.Subfolder, error) {
	return r.GetByID(ctx, id)
}

func (r *subfolderRepository) FindByEntity(_ context.Context, startupFolderID string, category domain.Category, entityID string) (*domain.Subfolder, error) {
	var out *domain.Subfolder
	err := r.access(false, func(st *state) error {
		for _, sf := range st.subfolders {
			if sf.StartupFolderID == startupFolderID && sf.Category == category && sf.EntityID == entityID {
				found := copySubfolder(sf)
				out = &found
				return nil
			}
		}
		return domain.NotFound("find subfolder by entity", "subfolder", entityID)
	})
	return out, err
}

func (r *subfolderRepository) ListByStartupFolder(_ context.Context, startupFolderID string) ([]domain.Subfolder, error) {
	out := make([]domain.Subfolder, 0)
	err := r.access(false, func(st *state) error {
		for _, sf := range st.subfolders {
			if sf.StartupFolderID == startupFolderID {
				out = append(out, copySubfolder(sf))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.EntityLabel != b.EntityLabel {
			return a.EntityLabel < b.EntityLabel
		}
		return a.ID < b.ID
	})
	return out, err
}

func (r *subfolderRepository) Update(_ context.Context, sf *domain.Subfolder, expected domain.SubfolderStatus) error {
	return r.access(true, func(st *state) error {
		current, ok := st.subfolders[sf.ID]
		if !ok {
			return domain.NotFound("update subfolder", "subfolder", sf.ID)
		}
		if current.Status != expected {
			return &domain.TransitionError{
				Entity:  "subfolder",
				ID:      sf.ID,
				Current: string(current.Status),
				Event:   "update",
				Allowed: []string{string(expected)},
			}
		}
		st.subfolders[sf.ID] = copySubfolder(*sf)
		return nil
	})
}

type folderRepository struct {
	access access
}

func (r *folderRepository) Create(_ context.Context, folder *domain.StartupFolder) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.folders[folder.ID]; ok {
			return fmt.Errorf("create startup folder: id %s already exists", folder.ID)
		}
		st.folders[folder.ID] = *folder
		return nil
	})
}

func (r *folderRepository) GetByID(_ context.Context, id string) (*domain.StartupFolder, error) {
	var out domain.StartupFolder
	err := r.access(false, func(st *state) error {
		folder, ok := st.folders[id]
		if !ok {
			return domain.NotFound("get startup folder", "startup folder", id)
		}
		out = folder
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete cascades to the folder's subfolders, their documents and audit rows.
func (r *folderRepository) Delete(_ context.Context, id string) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.folders[id]; !ok {
			return domain.NotFound("delete startup folder", "startup folder", id)
		}
		delete(st.folders, id)
		removed := make(map[string]struct{})
		for sfID, sf := range st.subfolders {
			if sf.StartupFolderID == id {
				removed[sfID] = struct{}{}
				delete(st.subfolders, sfID)
			}
		}
		for docID, doc := range st.documents {
			if _, ok := removed[doc.SubfolderID]; ok {
				delete(st.documents, docID)
			}
		}
		kept := st.audit[:0]
		for _, entry := range st.audit {
			if _, ok := removed[entry.SubfolderID]; !ok {
				kept = append(kept, entry)
			}
		}
		st.audit = kept
		return nil
	})
}

type userDirectory struct {
	access access
}

func (r *userDirectory) GetUser(_ context.Context, id string) (*domain.User, error) {
	var out domain.User
	err := r.access(false, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.NotFound("get user", "user", id)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type auditLog struct {
	access access
}

func (r *auditLog) RecordStatusChange(_ context.Context, entry domain.StatusChangeAudit) error {
	return r.access(true, func(st *state) error {
		if _, ok := st.subfolders[entry.SubfolderID]; !ok {
			return domain.NotFound("record status change", "subfolder", entry.SubfolderID)
		}
		st.audit = append(st.audit, entry)
		return nil
	})
}

func (r *auditLog) ListStatusChanges(_ context.Context, subfolderID string) ([]domain.StatusChangeAudit, error) {
	out := make([]domain.StatusChangeAudit, 0)
	err := r.access(false, func(st *state) error {
		for _, entry := range st.audit {
			if entry.SubfolderID == subfolderID {
				out = append(out, entry)
			}
		}
		return nil
	})
	return out, err
}
