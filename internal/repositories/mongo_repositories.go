package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/civicsight/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commentDocument struct {
	ID        string    `bson:"_id"`
	ReportID  string    `bson:"reportId"`
	UserID    string    `bson:"userId"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoCommentRepository 是 CommentRepository 的 MongoDB 实现
type mongoCommentRepository struct {
	col *mongo.Collection
}

// NewMongoCommentRepository 创建一个新的 mongoCommentRepository 实例
func NewMongoCommentRepository(db *mongo.Database) CommentRepository {
	return &mongoCommentRepository{col: db.Collection(CommentsCollection)}
}

func (r *mongoCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, commentDocument{
		ID:        comment.ID,
		ReportID:  comment.ReportID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	})
	return err
}

func (r *mongoCommentRepository) FindByReportID(ctx context.Context, reportID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"reportId": reportID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	comments := []models.Comment{}
	for cur.Next(ctx) {
		var doc commentDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		comments = append(comments, models.Comment(doc))
	}
	return comments, cur.Err()
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// mongoUserRepository 是 UserRepository 的 MongoDB 实现
type mongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository 创建一个新的 mongoUserRepository 实例
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{col: db.Collection(UsersCollection)}
}

// Create 依赖 email 上的唯一索引拒绝重复注册
func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleCitizen
	}
	_, err := r.col.InsertOne(ctx, userDocument(*user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailExists
	}
	return err
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	result := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		result[doc.ID] = models.User(doc)
	}
	return result, cur.Err()
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	user := models.User(doc)
	return &user, nil
}
