package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "tenderdesk/internal/domain/user"
)

// UserStore persists accounts and roles.
type UserStore struct {
	users *mongo.Collection
	roles *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{
		users: db.Collection("users"),
		roles: db.Collection("roles"),
	}
}

func (s *UserStore) Insert(ctx context.Context, u *domainuser.User) error {
	if _, err := s.ByMail(ctx, u.Mail); err == nil {
		return domainuser.ErrMailTaken
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return err
	}
	_, err := s.users.InsertOne(ctx, newUserDocument(u))
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrMailTaken
	}
	return err
}

func (s *UserStore) Update(ctx context.Context, u *domainuser.User) error {
	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": u.ID}, newUserDocument(u))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

func (s *UserStore) ByID(ctx context.Context, id string) (*domainuser.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *UserStore) ByMail(ctx context.Context, mail string) (*domainuser.User, error) {
	return s.findUser(ctx, bson.M{"mail": strings.ToLower(strings.TrimSpace(mail))})
}

func (s *UserStore) ByUserName(ctx context.Context, name string) (*domainuser.User, error) {
	return s.findUser(ctx, bson.M{"user_name": name})
}

func (s *UserStore) findUser(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *UserStore) List(ctx context.Context, roleID string) ([]domainuser.User, error) {
	filter := bson.M{}
	if roleID != "" {
		filter["rol_id"] = roleID
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	return s.findUsers(ctx, filter, opts)
}

func (s *UserStore) ByRoleKey(ctx context.Context, key, q string) ([]domainuser.User, error) {
	role, err := s.RoleByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"rol_id": role.ID}
	if q != "" {
		pattern := primitive.Regex{Pattern: regexQuote(q), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"user_name": pattern},
			bson.M{"mail": pattern},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "user_name", Value: 1}})
	return s.findUsers(ctx, filter, opts)
}

func (s *UserStore) findUsers(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domainuser.User, error) {
	cursor, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainuser.User
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toDomain())
	}
	return out, cursor.Err()
}

func (s *UserStore) InsertRole(ctx context.Context, r *domainuser.Role) error {
	_, err := s.roles.InsertOne(ctx, newRoleDocument(r))
	return err
}

func (s *UserStore) UpdateRole(ctx context.Context, r *domainuser.Role) error {
	res, err := s.roles.ReplaceOne(ctx, bson.M{"_id": r.ID}, newRoleDocument(r))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainuser.ErrRoleNotFound
	}
	return nil
}

func (s *UserStore) DeleteRole(ctx context.Context, id string) error {
	res, err := s.roles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainuser.ErrRoleNotFound
	}
	return nil
}

func (s *UserStore) RoleByID(ctx context.Context, id string) (*domainuser.Role, error) {
	return s.findRole(ctx, bson.M{"_id": id})
}

func (s *UserStore) RoleByKey(ctx context.Context, key string) (*domainuser.Role, error) {
	return s.findRole(ctx, bson.M{"key": key})
}

func (s *UserStore) findRole(ctx context.Context, filter bson.M) (*domainuser.Role, error) {
	var doc roleDocument
	if err := s.roles.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrRoleNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *UserStore) Roles(ctx context.Context) ([]domainuser.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "key", Value: 1}})
	cursor, err := s.roles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainuser.Role
	for cursor.Next(ctx) {
		var doc roleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toDomain())
	}
	return out, cursor.Err()
}

type userDocument struct {
	ID           string `bson:"_id"`
	RoleID       string `bson:"rol_id"`
	UserName     string `bson:"user_name"`
	Mail         string `bson:"mail"`
	PasswordHash string `bson:"password_hash"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:           u.ID,
		RoleID:       u.RoleID,
		UserName:     u.UserName,
		Mail:         strings.ToLower(u.Mail),
		PasswordHash: u.PasswordHash,
	}
}

func (d userDocument) toDomain() *domainuser.User {
	return &domainuser.User{
		ID:           d.ID,
		RoleID:       d.RoleID,
		UserName:     d.UserName,
		Mail:         d.Mail,
		PasswordHash: d.PasswordHash,
	}
}

type roleDocument struct {
	ID                   string   `bson:"_id"`
	Key                  string   `bson:"key"`
	Name                 string   `bson:"name"`
	AllowedDepartmentIDs []string `bson:"allowed_department_ids,omitempty"`
}

func newRoleDocument(r *domainuser.Role) roleDocument {
	return roleDocument{
		ID:                   r.ID,
		Key:                  r.Key,
		Name:                 r.Name,
		AllowedDepartmentIDs: r.AllowedDepartmentIDs,
	}
}

func (d roleDocument) toDomain() *domainuser.Role {
	return &domainuser.Role{
		ID:                   d.ID,
		Key:                  d.Key,
		Name:                 d.Name,
		AllowedDepartmentIDs: d.AllowedDepartmentIDs,
	}
}

func regexQuote(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`, `.`, `\.`, `+`, `\+`, `*`, `\*`, `?`, `\?`,
		`(`, `\(`, `)`, `\)`, `[`, `\[`, `]`, `\]`, `{`, `\{`, `}`, `\}`,
		`^`, `\^`, `$`, `\$`, `|`, `\|`,
	)
	return replacer.Replace(s)
}

var _ domainuser.Store = (*UserStore)(nil)
