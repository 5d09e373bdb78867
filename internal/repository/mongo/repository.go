// Package mongo implements MetadataStore against MongoDB, the
// production-grade counterpart to internal/repository/memory.
package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

type Repository struct {
	collection *mongo.Collection
}

var _ ports.MetadataStore = (*Repository)(nil)

type errorEntryDoc struct {
	Step    string `bson:"step"`
	Message string `bson:"message"`
	At      int64  `bson:"at"`
}

type probeResultDoc struct {
	Codec                 string  `bson:"codec"`
	Container             string  `bson:"container"`
	DurationSec           float64 `bson:"durationSec"`
	WidthPx               int     `bson:"widthPx,omitempty"`
	HeightPx              int     `bson:"heightPx,omitempty"`
	ValidatedWithFallback bool    `bson:"validatedWithFallback"`
}

type categoryResultDoc struct {
	Score    int      `bson:"score"`
	Keywords []string `bson:"keywords"`
}

type detectedIssueDoc struct {
	Category string   `bson:"category"`
	Score    int      `bson:"score"`
	Keywords []string `bson:"keywords"`
}

type sensitivityDoc struct {
	Score             int                          `bson:"score"`
	Verdict           string                       `bson:"verdict"`
	CategoryBreakdown map[string]categoryResultDoc `bson:"categoryBreakdown,omitempty"`
	DetectedIssues    []detectedIssueDoc           `bson:"detectedIssues,omitempty"`
	Rules             []string                     `bson:"rules"`
	Summary           string                       `bson:"summary"`
	AnalyzedAt        int64                        `bson:"analyzedAt"`
}

type videoDoc struct {
	ID          string           `bson:"_id"`
	TenantID    string           `bson:"tenantId"`
	OwnerID     string           `bson:"ownerId"`
	Title       string           `bson:"title"`
	Description string           `bson:"description,omitempty"`
	Filename    string           `bson:"filename"`
	BlobRef     string           `bson:"blobRef"`
	Size        int64            `bson:"size"`
	Status      string           `bson:"status"`
	Progress    int              `bson:"progress"`
	Sensitivity *sensitivityDoc  `bson:"sensitivity,omitempty"`
	ProbeResult *probeResultDoc  `bson:"probeResult,omitempty"`
	Errors      []errorEntryDoc  `bson:"errors,omitempty"`

	CreatedAt             int64  `bson:"createdAt"`
	ProcessingStartedAt   *int64 `bson:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *int64 `bson:"processingCompletedAt,omitempty"`
}

// videoUpdateDoc mirrors videoDoc but omits _id, which must never be
// part of a $set payload.
type videoUpdateDoc struct {
	TenantID    string          `bson:"tenantId"`
	OwnerID     string          `bson:"ownerId"`
	Title       string          `bson:"title"`
	Description string          `bson:"description,omitempty"`
	Filename    string          `bson:"filename"`
	BlobRef     string          `bson:"blobRef"`
	Size        int64           `bson:"size"`
	Status      string          `bson:"status"`
	Progress    int             `bson:"progress"`
	Sensitivity *sensitivityDoc `bson:"sensitivity,omitempty"`
	ProbeResult *probeResultDoc `bson:"probeResult,omitempty"`
	Errors      []errorEntryDoc `bson:"errors,omitempty"`

	CreatedAt             int64  `bson:"createdAt"`
	ProcessingStartedAt   *int64 `bson:"processingStartedAt,omitempty"`
	ProcessingCompletedAt *int64 `bson:"processingCompletedAt,omitempty"`
}

func NewRepository(client *mongo.Client, dbName, collectionName string) *Repository {
	return &Repository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: "text"}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func (r *Repository) Create(ctx context.Context, v domain.Video) error {
	doc := toDoc(v)
	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *Repository) Update(ctx context.Context, v domain.Video) error {
	doc := toUpdateDoc(v)
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": string(v.ID)}, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id domain.VideoID) (domain.Video, error) {
	var doc videoDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Video{}, domain.ErrNotFound
		}
		return domain.Video{}, err
	}
	return fromDoc(doc), nil
}

func (r *Repository) List(ctx context.Context, filter domain.VideoFilter) ([]domain.Video, error) {
	query := bson.M{"tenantId": string(filter.TenantID)}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	search := strings.TrimSpace(filter.Search)
	if search != "" {
		query["title"] = bson.M{
			"$regex":   regexp.QuoteMeta(search),
			"$options": "i",
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []videoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

func (r *Repository) Delete(ctx context.Context, id domain.VideoID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDoc(v domain.Video) videoDoc {
	return videoDoc{
		ID:                    string(v.ID),
		TenantID:              string(v.TenantID),
		OwnerID:               string(v.OwnerID),
		Title:                 v.Title,
		Description:           v.Description,
		Filename:              v.Filename,
		BlobRef:               v.BlobRef,
		Size:                  v.Size,
		Status:                string(v.Status),
		Progress:              v.Progress,
		Sensitivity:           sensitivityToDoc(v.Sensitivity),
		ProbeResult:           probeResultToDoc(v.ProbeResult),
		Errors:                errorsToDoc(v.Errors),
		CreatedAt:             v.CreatedAt.Unix(),
		ProcessingStartedAt:   unixPtr(v.ProcessingStartedAt),
		ProcessingCompletedAt: unixPtr(v.ProcessingCompletedAt),
	}
}

func toUpdateDoc(v domain.Video) videoUpdateDoc {
	return videoUpdateDoc{
		TenantID:              string(v.TenantID),
		OwnerID:               string(v.OwnerID),
		Title:                 v.Title,
		Description:           v.Description,
		Filename:              v.Filename,
		BlobRef:               v.BlobRef,
		Size:                  v.Size,
		Status:                string(v.Status),
		Progress:              v.Progress,
		Sensitivity:           sensitivityToDoc(v.Sensitivity),
		ProbeResult:           probeResultToDoc(v.ProbeResult),
		Errors:                errorsToDoc(v.Errors),
		CreatedAt:             v.CreatedAt.Unix(),
		ProcessingStartedAt:   unixPtr(v.ProcessingStartedAt),
		ProcessingCompletedAt: unixPtr(v.ProcessingCompletedAt),
	}
}

func fromDoc(doc videoDoc) domain.Video {
	return domain.Video{
		ID:                    domain.VideoID(doc.ID),
		TenantID:              domain.TenantID(doc.TenantID),
		OwnerID:               domain.UserID(doc.OwnerID),
		Title:                 doc.Title,
		Description:           doc.Description,
		Filename:              doc.Filename,
		BlobRef:               doc.BlobRef,
		Size:                  doc.Size,
		Status:                domain.Status(doc.Status),
		Progress:              doc.Progress,
		Sensitivity:           sensitivityFromDoc(doc.Sensitivity),
		ProbeResult:           probeResultFromDoc(doc.ProbeResult),
		Errors:                errorsFromDoc(doc.Errors),
		CreatedAt:             timeFromUnix(doc.CreatedAt),
		ProcessingStartedAt:   timeFromUnixPtr(doc.ProcessingStartedAt),
		ProcessingCompletedAt: timeFromUnixPtr(doc.ProcessingCompletedAt),
	}
}

func fromDocs(docs []videoDoc) []domain.Video {
	videos := make([]domain.Video, 0, len(docs))
	for _, doc := range docs {
		videos = append(videos, fromDoc(doc))
	}
	return videos
}

func probeResultToDoc(p *domain.ProbeResult) *probeResultDoc {
	if p == nil {
		return nil
	}
	return &probeResultDoc{
		Codec:                 p.Codec,
		Container:             p.Container,
		DurationSec:           p.DurationSec,
		WidthPx:               p.WidthPx,
		HeightPx:              p.HeightPx,
		ValidatedWithFallback: p.ValidatedWithFallback,
	}
}

func probeResultFromDoc(doc *probeResultDoc) *domain.ProbeResult {
	if doc == nil {
		return nil
	}
	return &domain.ProbeResult{
		Codec:                 doc.Codec,
		Container:             doc.Container,
		DurationSec:           doc.DurationSec,
		WidthPx:               doc.WidthPx,
		HeightPx:              doc.HeightPx,
		ValidatedWithFallback: doc.ValidatedWithFallback,
	}
}

func sensitivityToDoc(s *domain.Sensitivity) *sensitivityDoc {
	if s == nil {
		return nil
	}
	var breakdown map[string]categoryResultDoc
	if len(s.CategoryBreakdown) > 0 {
		breakdown = make(map[string]categoryResultDoc, len(s.CategoryBreakdown))
		for k, v := range s.CategoryBreakdown {
			breakdown[k] = categoryResultDoc{Score: v.Score, Keywords: v.Keywords}
		}
	}
	issues := make([]detectedIssueDoc, 0, len(s.DetectedIssues))
	for _, i := range s.DetectedIssues {
		issues = append(issues, detectedIssueDoc{Category: i.Category, Score: i.Score, Keywords: i.Keywords})
	}
	return &sensitivityDoc{
		Score:             s.Score,
		Verdict:           s.Verdict,
		CategoryBreakdown: breakdown,
		DetectedIssues:    issues,
		Rules:             s.Rules,
		Summary:           s.Summary,
		AnalyzedAt:        s.AnalyzedAt.Unix(),
	}
}

func sensitivityFromDoc(doc *sensitivityDoc) *domain.Sensitivity {
	if doc == nil {
		return nil
	}
	var breakdown map[string]domain.CategoryResult
	if len(doc.CategoryBreakdown) > 0 {
		breakdown = make(map[string]domain.CategoryResult, len(doc.CategoryBreakdown))
		for k, v := range doc.CategoryBreakdown {
			breakdown[k] = domain.CategoryResult{Score: v.Score, Keywords: v.Keywords}
		}
	}
	issues := make([]domain.DetectedIssue, 0, len(doc.DetectedIssues))
	for _, i := range doc.DetectedIssues {
		issues = append(issues, domain.DetectedIssue{Category: i.Category, Score: i.Score, Keywords: i.Keywords})
	}
	return &domain.Sensitivity{
		Score:             doc.Score,
		Verdict:           doc.Verdict,
		CategoryBreakdown: breakdown,
		DetectedIssues:    issues,
		Rules:             doc.Rules,
		Summary:           doc.Summary,
		AnalyzedAt:        timeFromUnix(doc.AnalyzedAt),
	}
}

func errorsToDoc(entries []domain.ErrorEntry) []errorEntryDoc {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]errorEntryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, errorEntryDoc{Step: e.Step, Message: e.Message, At: e.At.Unix()})
	}
	return docs
}

func errorsFromDoc(docs []errorEntryDoc) []domain.ErrorEntry {
	if len(docs) == 0 {
		return nil
	}
	entries := make([]domain.ErrorEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, domain.ErrorEntry{Step: d.Step, Message: d.Message, At: timeFromUnix(d.At)})
	}
	return entries
}

func timeFromUnix(value int64) time.Time {
	return time.Unix(value, 0).UTC()
}

func timeFromUnixPtr(value *int64) *time.Time {
	if value == nil {
		return nil
	}
	t := timeFromUnix(*value)
	return &t
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	u := t.Unix()
	return &u
}
