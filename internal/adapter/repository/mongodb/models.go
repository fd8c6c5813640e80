package mongodb

import (
	"time"

	"github.com/diegoalves1988/indicaai/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ratingDocument is the persisted shape of a domain.Rating.
type ratingDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ProfessionalID string             `bson:"professional_id"`
	UserID         string             `bson:"user_id"`
	Score          int32              `bson:"score"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d *ratingDocument) toDomain() *domain.Rating {
	if d == nil {
		return nil
	}
	return &domain.Rating{
		ID:             d.ID,
		ProfessionalID: d.ProfessionalID,
		UserID:         d.UserID,
		Score:          d.Score,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// professionalDocument is the persisted shape of a domain.Professional,
// including the denormalized rating aggregate.
type professionalDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	UserID              string             `bson:"user_id"`
	Name                string             `bson:"name"`
	Category            string             `bson:"category"`
	Specialties         []string           `bson:"specialties,omitempty"`
	City                string             `bson:"city"`
	Bio                 string             `bson:"bio,omitempty"`
	RecommendationCount int32              `bson:"recommendation_count"`
	RecommendedBy       []string           `bson:"recommended_by"`
	TotalRatings        int32              `bson:"total_ratings"`
	AverageRating       float64            `bson:"average_rating"`
	ShowRating          bool               `bson:"show_rating"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func (d *professionalDocument) toDomain() *domain.Professional {
	if d == nil {
		return nil
	}
	return &domain.Professional{
		ID:                  d.ID.Hex(),
		UserID:              d.UserID,
		Name:                d.Name,
		Category:            d.Category,
		Specialties:         d.Specialties,
		City:                d.City,
		Bio:                 d.Bio,
		RecommendationCount: d.RecommendationCount,
		RecommendedBy:       d.RecommendedBy,
		Stats: domain.RatingStats{
			TotalRatings:  d.TotalRatings,
			AverageRating: d.AverageRating,
			ShowRating:    d.ShowRating,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toDomainProfessionals(docs []*professionalDocument) []*domain.Professional {
	out := make([]*domain.Professional, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out
}

// addressDocument is the embedded postal address block.
type addressDocument struct {
	CEP     string `bson:"cep"`
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state"`
	Country string `bson:"country"`
}

// userDocument is the persisted shape of a domain.User. The document key is
// the authentication subject ID, which gives listings ordered by _id a
// stable total order for cursor pagination.
type userDocument struct {
	ID                  string          `bson:"_id"`
	Name                string          `bson:"name"`
	Phone               string          `bson:"phone,omitempty"`
	PhotoURL            string          `bson:"photo_url,omitempty"`
	Address             addressDocument `bson:"address"`
	Friends             []string        `bson:"friends"`
	Favorites           []string        `bson:"favorites"`
	ProfessionalProfile bool            `bson:"professional_profile"`
	CreatedAt           time.Time       `bson:"created_at"`
	UpdatedAt           time.Time       `bson:"updated_at"`
}

func (d *userDocument) toDomain() *domain.User {
	if d == nil {
		return nil
	}
	return &domain.User{
		ID:       d.ID,
		Name:     d.Name,
		Phone:    d.Phone,
		PhotoURL: d.PhotoURL,
		Address: domain.Address{
			CEP:     d.Address.CEP,
			Street:  d.Address.Street,
			City:    d.Address.City,
			State:   d.Address.State,
			Country: d.Address.Country,
		},
		Friends:             d.Friends,
		Favorites:           d.Favorites,
		ProfessionalProfile: d.ProfessionalProfile,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *userDocument {
	if u == nil {
		return nil
	}
	return &userDocument{
		ID:       u.ID,
		Name:     u.Name,
		Phone:    u.Phone,
		PhotoURL: u.PhotoURL,
		Address: addressDocument{
			CEP:     u.Address.CEP,
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			Country: u.Address.Country,
		},
		Friends:             u.Friends,
		Favorites:           u.Favorites,
		ProfessionalProfile: u.ProfessionalProfile,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func toDomainUsers(docs []*userDocument) []*domain.User {
	out := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out
}
