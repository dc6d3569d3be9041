package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/civicsight/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

// Mongo 集合名称
const (
	ReportsCollection  = "reports"
	CommentsCollection = "comments"
	UsersCollection    = "users"
)

// geoPoint 是 GeoJSON Point，用于 2dsphere 索引
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type addressDocument struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	ZipCode string `bson:"zipCode"`
}

type reportDocument struct {
	ID            string          `bson:"_id"`
	UserID        string          `bson:"userId"`
	IssueType     string          `bson:"issueType"`
	SeverityScore float64         `bson:"severityScore"`
	Severity      string          `bson:"severity"`
	Priority      string          `bson:"priority"`
	AIMetadata    interface{}     `bson:"aiMetadata,omitempty"`
	Tags          []string        `bson:"tags"`
	Description   string          `bson:"description"`
	ImageURL      *string         `bson:"imageUrl,omitempty"`
	AudioURL      *string         `bson:"audioUrl,omitempty"`
	MediaType     string          `bson:"mediaType"`
	Location      geoPoint        `bson:"location"`
	Address       addressDocument `bson:"address"`
	Status        string          `bson:"status"`
	Upvotes       []string        `bson:"upvotes"`
	UpvoteCount   int             `bson:"upvoteCount"`
	CreatedAt     time.Time       `bson:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt"`
}

func toReportDocument(r *models.Report) (*reportDocument, error) {
	doc := &reportDocument{
		ID:            r.ID,
		UserID:        r.UserID,
		IssueType:     r.IssueType,
		SeverityScore: r.SeverityScore,
		Severity:      string(r.Severity),
		Priority:      string(r.Priority),
		Tags:          []string(r.Tags),
		Description:   r.Description,
		ImageURL:      r.ImageURL,
		AudioURL:      r.AudioURL,
		MediaType:     r.MediaType,
		Location:      geoPoint{Type: "Point", Coordinates: []float64{r.Location.Longitude, r.Location.Latitude}},
		Address: addressDocument{
			Street:  r.Location.Address,
			City:    r.Location.City,
			State:   r.Location.State,
			ZipCode: r.Location.ZipCode,
		},
		Status:      string(r.Status),
		Upvotes:     r.Upvotes,
		UpvoteCount: r.UpvoteCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.Upvotes == nil {
		doc.Upvotes = []string{}
	}
	if len(r.AIMetadata) > 0 {
		var meta interface{}
		if err := json.Unmarshal(r.AIMetadata, &meta); err != nil {
			return nil, err
		}
		doc.AIMetadata = meta
	}
	return doc, nil
}

func (d *reportDocument) toModel() (models.Report, error) {
	r := models.Report{
		ID:            d.ID,
		UserID:        d.UserID,
		IssueType:     d.IssueType,
		SeverityScore: d.SeverityScore,
		Severity:      models.Level(d.Severity),
		Priority:      models.Level(d.Priority),
		Tags:          datatypes.JSONSlice[string](d.Tags),
		Description:   d.Description,
		ImageURL:      d.ImageURL,
		AudioURL:      d.AudioURL,
		MediaType:     d.MediaType,
		Location: models.Location{
			Address: d.Address.Street,
			City:    d.Address.City,
			State:   d.Address.State,
			ZipCode: d.Address.ZipCode,
		},
		Status:      models.ReportStatus(d.Status),
		Upvotes:     d.Upvotes,
		UpvoteCount: d.UpvoteCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Location.Coordinates) == 2 {
		r.Location.Longitude = d.Location.Coordinates[0]
		r.Location.Latitude = d.Location.Coordinates[1]
	}
	if r.Upvotes == nil {
		r.Upvotes = []string{}
	}
	if r.Tags == nil {
		r.Tags = datatypes.JSONSlice[string]{}
	}
	if d.AIMetadata != nil {
		// bson 解码出的 primitive.D 需经 extended JSON 转回普通 JSON
		raw, err := bson.MarshalExtJSON(bson.M{"v": d.AIMetadata}, false, false)
		if err != nil {
			return r, err
		}
		var wrapper struct {
			V json.RawMessage `json:"v"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return r, err
		}
		r.AIMetadata = datatypes.JSON(wrapper.V)
	}
	return r, nil
}

// mongoReportRepository 是 ReportRepository 的 MongoDB 实现
type mongoReportRepository struct {
	col *mongo.Collection
}

// NewMongoReportRepository 创建一个新的 mongoReportRepository 实例
func NewMongoReportRepository(db *mongo.Database) ReportRepository {
	return &mongoReportRepository{col: db.Collection(ReportsCollection)}
}

func (r *mongoReportRepository) Create(ctx context.Context, report *models.Report) error {
	now := time.Now()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = now
	if report.Upvotes == nil {
		report.Upvotes = []string{}
	}
	if err := report.Validate(); err != nil {
		return err
	}
	doc, err := toReportDocument(report)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *mongoReportRepository) FindByID(ctx context.Context, id string) (*models.Report, error) {
	var doc reportDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	report, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *mongoReportRepository) FindAll(ctx context.Context, limit int) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoReportRepository) FindByUserID(ctx context.Context, userID string) ([]models.Report, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func (r *mongoReportRepository) FindTopUpvoted(ctx context.Context, limit int) ([]models.Report, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "upvoteCount", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, bson.M{"upvoteCount": bson.M{"$gt": 0}}, opts)
}

// FindNearby 依赖 location 上的 2dsphere 索引，$nearSphere 的结果已按距离排序
func (r *mongoReportRepository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]models.Report, error) {
	filter := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{lng, lat}},
				"$maxDistance": radiusMeters,
			},
		},
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *mongoReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc reportDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	report, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ToggleUpvote 用单条流水线更新完成成员切换和计数重算，文档级原子性保证并发下不丢更新
func (r *mongoReportRepository) ToggleUpvote(ctx context.Context, id, userID string) (*models.Report, bool, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "upvotes", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$in", Value: bson.A{userID, bson.D{{Key: "$ifNull", Value: bson.A{"$upvotes", bson.A{}}}}}}},
				bson.D{{Key: "$setDifference", Value: bson.A{"$upvotes", bson.A{userID}}}},
				bson.D{{Key: "$concatArrays", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$upvotes", bson.A{}}}}, bson.A{userID}}}},
			}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "upvoteCount", Value: bson.D{{Key: "$size", Value: "$upvotes"}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc reportDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrRecordNotFound
		}
		return nil, false, err
	}
	report, err := doc.toModel()
	if err != nil {
		return nil, false, err
	}
	return &report, report.HasUpvote(userID), nil
}

func (r *mongoReportRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Report, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	reports := []models.Report{}
	for cur.Next(ctx) {
		var doc reportDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		report, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}
