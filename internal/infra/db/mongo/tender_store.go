package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaintender "tenderdesk/internal/domain/tender"
)

// TenderStore persists departments and tender requests.
type TenderStore struct {
	departments *mongo.Collection
	requests    *mongo.Collection
}

func NewTenderStore(db *mongo.Database) *TenderStore {
	return &TenderStore{
		departments: db.Collection("departments"),
		requests:    db.Collection("tender_requests"),
	}
}

func (s *TenderStore) InsertDepartment(ctx context.Context, d *domaintender.Department) error {
	existing, err := s.departmentByName(ctx, d.Name)
	if err != nil && !errors.Is(err, domaintender.ErrDepartmentMissing) {
		return err
	}
	if existing != nil {
		return domaintender.ErrDuplicateName
	}
	_, err = s.departments.InsertOne(ctx, newDepartmentDocument(d))
	return err
}

func (s *TenderStore) UpdateDepartment(ctx context.Context, d *domaintender.Department) error {
	existing, err := s.departmentByName(ctx, d.Name)
	if err != nil && !errors.Is(err, domaintender.ErrDepartmentMissing) {
		return err
	}
	if existing != nil && existing.ID != d.ID {
		return domaintender.ErrDuplicateName
	}
	res, err := s.departments.ReplaceOne(ctx, bson.M{"_id": d.ID}, newDepartmentDocument(d))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaintender.ErrDepartmentMissing
	}
	return nil
}

func (s *TenderStore) DeleteDepartment(ctx context.Context, id string) error {
	res, err := s.departments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaintender.ErrDepartmentMissing
	}
	return nil
}

func (s *TenderStore) DepartmentByID(ctx context.Context, id string) (*domaintender.Department, error) {
	var doc departmentDocument
	if err := s.departments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintender.ErrDepartmentMissing
		}
		return nil, err
	}
	return &domaintender.Department{ID: doc.ID, Name: doc.Name}, nil
}

func (s *TenderStore) departmentByName(ctx context.Context, name string) (*domaintender.Department, error) {
	var doc departmentDocument
	filter := bson.M{"name_lower": strings.ToLower(name)}
	if err := s.departments.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintender.ErrDepartmentMissing
		}
		return nil, err
	}
	return &domaintender.Department{ID: doc.ID, Name: doc.Name}, nil
}

func (s *TenderStore) Departments(ctx context.Context) ([]domaintender.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.departments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domaintender.Department
	for cursor.Next(ctx) {
		var doc departmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domaintender.Department{ID: doc.ID, Name: doc.Name})
	}
	return out, cursor.Err()
}

func (s *TenderStore) Insert(ctx context.Context, r *domaintender.Request) error {
	_, err := s.requests.InsertOne(ctx, newRequestDocument(r))
	return err
}

func (s *TenderStore) Update(ctx context.Context, r *domaintender.Request) error {
	res, err := s.requests.ReplaceOne(ctx, bson.M{"_id": r.ID}, newRequestDocument(r))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domaintender.ErrNotFound
	}
	return nil
}

func (s *TenderStore) Delete(ctx context.Context, id string) error {
	res, err := s.requests.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaintender.ErrNotFound
	}
	return nil
}

func (s *TenderStore) ByID(ctx context.Context, id string) (*domaintender.Request, error) {
	var doc requestDocument
	if err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaintender.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *TenderStore) List(ctx context.Context, f domaintender.Filter) ([]domaintender.Request, error) {
	filter := bson.M{}
	if f.DepartmentID != "" {
		filter["department_id"] = f.DepartmentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domaintender.Request
	for cursor.Next(ctx) {
		var doc requestDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toDomain())
	}
	return out, cursor.Err()
}

type departmentDocument struct {
	ID        string `bson:"_id"`
	Name      string `bson:"name"`
	NameLower string `bson:"name_lower"`
}

func newDepartmentDocument(d *domaintender.Department) departmentDocument {
	return departmentDocument{ID: d.ID, Name: d.Name, NameLower: strings.ToLower(d.Name)}
}

type requestDocument struct {
	ID             string `bson:"_id"`
	DepartmentID   string `bson:"department_id"`
	CreatedBy      string `bson:"created_by"`
	Code           string `bson:"code"`
	Category       string `bson:"category"`
	Status         string `bson:"status"`
	RequiredLevels int    `bson:"required_levels"`
	CurrentLevel   int    `bson:"current_level"`
	CreatedAt      int64  `bson:"created_at"`
	ModifiedAt     int64  `bson:"modified_at"`
}

func newRequestDocument(r *domaintender.Request) requestDocument {
	return requestDocument{
		ID:             r.ID,
		DepartmentID:   r.DepartmentID,
		CreatedBy:      r.CreatedBy,
		Code:           r.Code,
		Category:       r.Category,
		Status:         r.Status,
		RequiredLevels: r.RequiredLevels,
		CurrentLevel:   r.CurrentLevel,
		CreatedAt:      r.CreatedAt.UnixMilli(),
		ModifiedAt:     r.ModifiedAt.UnixMilli(),
	}
}

func (d requestDocument) toDomain() *domaintender.Request {
	return &domaintender.Request{
		ID:             d.ID,
		DepartmentID:   d.DepartmentID,
		CreatedBy:      d.CreatedBy,
		Code:           d.Code,
		Category:       d.Category,
		Status:         d.Status,
		RequiredLevels: d.RequiredLevels,
		CurrentLevel:   d.CurrentLevel,
		CreatedAt:      timestampToTime(d.CreatedAt),
		ModifiedAt:     timestampToTime(d.ModifiedAt),
	}
}

var _ domaintender.Store = (*TenderStore)(nil)
