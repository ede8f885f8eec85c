package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/servicecenter/service-center-api/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository implements ports.CredentialStore on MongoDB. A unique
// index on email plus FindOneAndUpdate conditional writes provide the
// insert-once / consume-once / swap-if-current guarantees the identity
// service relies on.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type otpDoc struct {
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type refreshDoc struct {
	Hash      string    `bson:"hash"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type accountDoc struct {
	ID           string      `bson:"_id"`
	Email        string      `bson:"email"`
	PasswordHash string      `bson:"password_hash"`
	FirstName    string      `bson:"first_name"`
	LastName     string      `bson:"last_name"`
	Role         string      `bson:"role"`
	Verified     bool        `bson:"verified"`
	PendingOTP   *otpDoc     `bson:"pending_otp,omitempty"`
	RefreshToken *refreshDoc `bson:"refresh_token,omitempty"`
	CreatedAt    time.Time   `bson:"created_at"`
}

// storeErr distinguishes an unreachable store from other failures so the API
// can surface 503 instead of a domain error or a generic 500.
func storeErr(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toDoc(a *domain.Account) *accountDoc {
	doc := &accountDoc{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Role:         string(a.Role),
		Verified:     a.Verified,
		CreatedAt:    a.CreatedAt,
	}
	if a.PendingOTP != nil {
		doc.PendingOTP = &otpDoc{Code: a.PendingOTP.Code, ExpiresAt: a.PendingOTP.ExpiresAt}
	}
	if a.RefreshToken != nil {
		doc.RefreshToken = &refreshDoc{Hash: a.RefreshToken.Hash, ExpiresAt: a.RefreshToken.ExpiresAt}
	}
	return doc
}

func toAccount(doc *accountDoc) *domain.Account {
	a := &domain.Account{
		ID:           doc.ID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Role:         domain.Role(doc.Role),
		Verified:     doc.Verified,
		CreatedAt:    doc.CreatedAt.UTC(),
	}
	if doc.PendingOTP != nil {
		a.PendingOTP = &domain.PendingOTP{Code: doc.PendingOTP.Code, ExpiresAt: doc.PendingOTP.ExpiresAt.UTC()}
	}
	if doc.RefreshToken != nil {
		a.RefreshToken = &domain.RefreshToken{Hash: doc.RefreshToken.Hash, ExpiresAt: doc.RefreshToken.ExpiresAt.UTC()}
	}
	return a
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if _, err := r.coll.InsertOne(ctx, toDoc(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, storeErr("insert account", err)
	}
	return account, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, storeErr("count accounts", err)
	}
	return n > 0, nil
}

func (r *AccountRepository) FindByOTPCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"pending_otp.code": code})
}

func (r *AccountRepository) FindByRefreshTokenHash(ctx context.Context, hash string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"refresh_token.hash": hash})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr("find account", err)
	}
	return toAccount(&doc), nil
}

// MarkVerified consumes the OTP and activates the account in one conditional
// update, so a code is redeemed at most once even under concurrent calls.
func (r *AccountRepository) MarkVerified(ctx context.Context, code string) (*domain.Account, error) {
	var doc accountDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"pending_otp.code": code},
		bson.M{
			"$set":   bson.M{"verified": true},
			"$unset": bson.M{"pending_otp": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidOTP
		}
		return nil, storeErr("mark verified", err)
	}
	return toAccount(&doc), nil
}

func (r *AccountRepository) SetOTP(ctx context.Context, email string, otp domain.PendingOTP) error {
	return r.updateByEmail(ctx, email, bson.M{
		"$set": bson.M{"pending_otp": otpDoc{Code: otp.Code, ExpiresAt: otp.ExpiresAt}},
	})
}

// ClearOTP is keyed on the code as well as the email, so it cannot wipe a
// fresh OTP that replaced the presented one concurrently. Zero matches means
// the code is already gone, which is the desired end state.
func (r *AccountRepository) ClearOTP(ctx context.Context, email, code string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "pending_otp.code": code},
		bson.M{"$unset": bson.M{"pending_otp": ""}},
	)
	if err != nil {
		return storeErr("clear otp", err)
	}
	return nil
}

// ResetPassword swaps the hash conditional on the OTP code still matching.
func (r *AccountRepository) ResetPassword(ctx context.Context, email, code, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "pending_otp.code": code},
		bson.M{
			"$set":   bson.M{"password_hash": passwordHash},
			"$unset": bson.M{"pending_otp": ""},
		},
	)
	if err != nil {
		return storeErr("reset password", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidOrExpiredOTP
	}
	return nil
}

func (r *AccountRepository) SetRefreshToken(ctx context.Context, email string, token domain.RefreshToken) error {
	return r.updateByEmail(ctx, email, bson.M{
		"$set": bson.M{"refresh_token": refreshDoc{Hash: token.Hash, ExpiresAt: token.ExpiresAt}},
	})
}

// RotateRefreshToken swaps in the new token only while the old hash is still
// current. Concurrent redeemers of the same token get exactly one winner.
func (r *AccountRepository) RotateRefreshToken(ctx context.Context, oldHash string, token domain.RefreshToken) (*domain.Account, error) {
	var doc accountDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"refresh_token.hash": oldHash},
		bson.M{"$set": bson.M{"refresh_token": refreshDoc{Hash: token.Hash, ExpiresAt: token.ExpiresAt}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, storeErr("rotate refresh token", err)
	}
	return toAccount(&doc), nil
}

func (r *AccountRepository) ClearRefreshToken(ctx context.Context, email string) error {
	return r.updateByEmail(ctx, email, bson.M{"$unset": bson.M{"refresh_token": ""}})
}

func (r *AccountRepository) updateByEmail(ctx context.Context, email string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return storeErr("update account", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
