package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type documentRow struct {
	Collection string    `gorm:"column:collection;primaryKey"`
	DocID      string    `gorm:"column:doc_id;primaryKey"`
	Data       string    `gorm:"column:data;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (documentRow) TableName() string { return "documents" }

type documentFieldRow struct {
	Collection string `gorm:"column:collection;primaryKey"`
	DocID      string `gorm:"column:doc_id;primaryKey"`
	Field      string `gorm:"column:field;primaryKey"`
	Value      string `gorm:"column:value;index"`
}

func (documentFieldRow) TableName() string { return "document_fields" }

// Store is the GORM-backed document store.
type Store struct {
	db       *gorm.DB
	notifier Notifier
	specs    map[string]CollectionSpec
}

// New migrates the backing tables and returns a store serving the given
// collection specs.
func New(db *gorm.DB, notifier Notifier, specs ...CollectionSpec) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("docstore: db handle required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("docstore: notifier required")
	}
	if err := db.AutoMigrate(&documentRow{}, &documentFieldRow{}); err != nil {
		return nil, fmt.Errorf("docstore: migrate: %w", err)
	}
	byName := make(map[string]CollectionSpec, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("docstore: collection spec missing name")
		}
		byName[spec.Name] = spec
	}
	return &Store{db: db, notifier: notifier, specs: byName}, nil
}

// Collection returns a handle for the named collection.
func (s *Store) Collection(name string) *Collection {
	spec, ok := s.specs[name]
	return &Collection{store: s, spec: spec, known: ok}
}

// Ping verifies the datasource is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Collection scopes reads and writes to one named collection.
type Collection struct {
	store *Store
	spec  CollectionSpec
	known bool
}

// Add stores a new document and returns its generated id.
func (c *Collection) Add(ctx context.Context, doc any) (string, error) {
	if !c.known {
		return "", ErrUnknownCollection
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("docstore: encode document: %w", err)
	}
	id := uuid.NewString()
	row := documentRow{Collection: c.spec.Name, DocID: id, Data: string(data)}
	err = c.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return c.reindex(tx, id, data)
	})
	if err != nil {
		return "", fmt.Errorf("docstore: add document: %w", err)
	}
	c.publish(ctx)
	return id, nil
}

// Doc returns a handle for one document id.
func (c *Collection) Doc(id string) *Document {
	return &Document{collection: c, id: id}
}

// Query starts a query over the collection.
func (c *Collection) Query() *Query {
	return &Query{collection: c}
}

func (c *Collection) reindex(tx *gorm.DB, id string, data []byte) error {
	if err := tx.
		Where("collection = ? AND doc_id = ?", c.spec.Name, id).
		Delete(&documentFieldRow{}).Error; err != nil {
		return err
	}
	if len(c.spec.IndexedFields) == 0 {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode for indexing: %w", err)
	}
	rows := make([]documentFieldRow, 0, len(c.spec.IndexedFields))
	for _, field := range c.spec.IndexedFields {
		value, ok := fieldValue(decoded, field)
		if !ok {
			continue
		}
		rows = append(rows, documentFieldRow{
			Collection: c.spec.Name,
			DocID:      id,
			Field:      field,
			Value:      value,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (c *Collection) publish(ctx context.Context) {
	// Best effort: a missed signal only delays the next snapshot until the
	// following write.
	_ = c.store.notifier.Publish(ctx, c.spec.Name)
}

// Document addresses a single stored document.
type Document struct {
	collection *Collection
	id         string
}

// ID returns the addressed document id.
func (d *Document) ID() string { return d.id }

// Snapshot reads the raw document.
func (d *Document) Snapshot(ctx context.Context) (RawDoc, error) {
	var row documentRow
	err := d.collection.store.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", d.collection.spec.Name, d.id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RawDoc{}, ErrNotFound
	}
	if err != nil {
		return RawDoc{}, fmt.Errorf("docstore: read document: %w", err)
	}
	return rawDocFromRow(row), nil
}

// Get reads the document and decodes it into dest.
func (d *Document) Get(ctx context.Context, dest any) error {
	raw, err := d.Snapshot(ctx)
	if err != nil {
		return err
	}
	return raw.Decode(dest)
}

// Update merges the given top-level fields into the stored document. Fields
// not named keep their stored values.
func (d *Document) Update(ctx context.Context, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := d.collection.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		err := tx.
			Where("collection = ? AND doc_id = ?", d.collection.spec.Name, d.id).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(row.Data), &decoded); err != nil {
			return fmt.Errorf("decode stored document: %w", err)
		}
		for key, value := range fields {
			decoded[key] = value
		}
		merged, err := json.Marshal(decoded)
		if err != nil {
			return fmt.Errorf("encode merged document: %w", err)
		}
		row.Data = string(merged)
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		return d.collection.reindex(tx, d.id, merged)
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("docstore: update document: %w", err)
	}
	d.collection.publish(ctx)
	return nil
}

// Delete removes the document. Deleting an absent document is a no-op.
func (d *Document) Delete(ctx context.Context) error {
	err := d.collection.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("collection = ? AND doc_id = ?", d.collection.spec.Name, d.id).
			Delete(&documentRow{}).Error; err != nil {
			return err
		}
		return tx.
			Where("collection = ? AND doc_id = ?", d.collection.spec.Name, d.id).
			Delete(&documentFieldRow{}).Error
	})
	if err != nil {
		return fmt.Errorf("docstore: delete document: %w", err)
	}
	d.collection.publish(ctx)
	return nil
}

func rawDocFromRow(row documentRow) RawDoc {
	return RawDoc{
		ID:        row.DocID,
		Data:      json.RawMessage(row.Data),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
