package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "tenderdesk/internal/domain/chat"
)

// ChatStore persists chats and their messages in two collections.
type ChatStore struct {
	chats    *mongo.Collection
	messages *mongo.Collection
}

func NewChatStore(db *mongo.Database) *ChatStore {
	return &ChatStore{
		chats:    db.Collection("chats"),
		messages: db.Collection("chat_messages"),
	}
}

func (s *ChatStore) Insert(ctx context.Context, c *domainchat.Chat) error {
	_, err := s.chats.InsertOne(ctx, newChatDocument(c))
	return err
}

func (s *ChatStore) ByID(ctx context.Context, id string) (*domainchat.Chat, error) {
	var doc chatDocument
	if err := s.chats.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *ChatStore) FindOpen(ctx context.Context, bidderUserID, tenderRequestID string) (*domainchat.Chat, error) {
	filter := bson.M{
		"bidder_user_id": bidderUserID,
		"status":         string(domainchat.StatusOpen),
	}
	if tenderRequestID != "" {
		filter["tender_request_id"] = tenderRequestID
	}
	var doc chatDocument
	if err := s.chats.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainchat.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (s *ChatStore) Mine(ctx context.Context, userID string) ([]domainchat.Chat, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"bidder_user_id": userID},
		bson.M{"worker_user_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := s.chats.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainchat.Chat
	for cursor.Next(ctx) {
		var doc chatDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toDomain())
	}
	return out, cursor.Err()
}

func (s *ChatStore) InsertMessage(ctx context.Context, m *domainchat.Message) error {
	_, err := s.messages.InsertOne(ctx, messageDocument{
		ID:           m.ID,
		ChatID:       m.ChatID,
		SenderUserID: m.SenderUserID,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt.UnixMilli(),
	})
	return err
}

func (s *ChatStore) MessagesAfter(ctx context.Context, chatID string, after time.Time, limit int) ([]domainchat.Message, error) {
	filter := bson.M{"chat_id": chatID}
	if !after.IsZero() {
		// Strictly newer than the watermark so pollers never re-fetch the boundary message.
		filter["created_at"] = bson.M{"$gt": after.UnixMilli()}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cursor, err := s.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainchat.Message
	for cursor.Next(ctx) {
		var doc messageDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domainchat.Message{
			ID:           doc.ID,
			ChatID:       doc.ChatID,
			SenderUserID: doc.SenderUserID,
			Text:         doc.Text,
			CreatedAt:    timestampToTime(doc.CreatedAt),
		})
	}
	return out, cursor.Err()
}

func (s *ChatStore) ApplySend(ctx context.Context, chatID string, update domainchat.SendUpdate) error {
	unreadField := "unread_worker"
	if update.BidderUnread {
		unreadField = "unread_bidder"
	}
	res, err := s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{
		"$set": bson.M{
			"last_message_preview": update.Preview,
			"last_message_at":      update.At.UnixMilli(),
		},
		"$inc": bson.M{unreadField: 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrNotFound
	}
	return nil
}

func (s *ChatStore) ResetUnread(ctx context.Context, chatID, userID string) error {
	chat, err := s.ByID(ctx, chatID)
	if err != nil {
		return err
	}
	var field string
	switch userID {
	case chat.BidderUserID:
		field = "unread_bidder"
	case chat.WorkerUserID:
		field = "unread_worker"
	default:
		return domainchat.ErrNotParticipant
	}
	_, err = s.chats.UpdateOne(ctx, bson.M{"_id": chatID}, bson.M{"$set": bson.M{field: 0}})
	return err
}

func (s *ChatStore) UnreadTotal(ctx context.Context, userID string) (int, error) {
	chats, err := s.Mine(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range chats {
		total += c.UnreadFor(userID)
	}
	return total, nil
}

type chatDocument struct {
	ID                 string `bson:"_id"`
	TenderRequestID    string `bson:"tender_request_id,omitempty"`
	BidderUserID       string `bson:"bidder_user_id"`
	WorkerUserID       string `bson:"worker_user_id"`
	Status             string `bson:"status"`
	UnreadBidder       int    `bson:"unread_bidder"`
	UnreadWorker       int    `bson:"unread_worker"`
	LastMessagePreview string `bson:"last_message_preview,omitempty"`
	LastMessageAt      int64  `bson:"last_message_at,omitempty"`
}

func newChatDocument(c *domainchat.Chat) chatDocument {
	doc := chatDocument{
		ID:                 c.ID,
		TenderRequestID:    c.TenderRequestID,
		BidderUserID:       c.BidderUserID,
		WorkerUserID:       c.WorkerUserID,
		Status:             string(c.Status),
		UnreadBidder:       c.UnreadBidder,
		UnreadWorker:       c.UnreadWorker,
		LastMessagePreview: c.LastMessagePreview,
	}
	if !c.LastMessageAt.IsZero() {
		doc.LastMessageAt = c.LastMessageAt.UnixMilli()
	}
	return doc
}

func (d chatDocument) toDomain() *domainchat.Chat {
	c := &domainchat.Chat{
		ID:                 d.ID,
		TenderRequestID:    d.TenderRequestID,
		BidderUserID:       d.BidderUserID,
		WorkerUserID:       d.WorkerUserID,
		Status:             domainchat.Status(d.Status),
		UnreadBidder:       d.UnreadBidder,
		UnreadWorker:       d.UnreadWorker,
		LastMessagePreview: d.LastMessagePreview,
	}
	if d.LastMessageAt != 0 {
		c.LastMessageAt = timestampToTime(d.LastMessageAt)
	}
	return c
}

type messageDocument struct {
	ID           string `bson:"_id"`
	ChatID       string `bson:"chat_id"`
	SenderUserID string `bson:"sender_user_id"`
	Text         string `bson:"text"`
	CreatedAt    int64  `bson:"created_at"`
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

var _ domainchat.Store = (*ChatStore)(nil)
