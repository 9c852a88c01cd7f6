package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"nutriportions/models"
	"nutriportions/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SNSAPI is the part of the SNS client push delivery uses.
type SNSAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type PushService struct {
	db              *gorm.DB
	sns             SNSAPI
	fcmPlatformArn  string
	apnsPlatformArn string
	hub             Broadcaster
}

// NewPushService builds push delivery. With a nil sns client tokens are
// still stored but nothing is published.
func NewPushService(db *gorm.DB, sns SNSAPI, fcmArn, apnsArn string, hub Broadcaster) *PushService {
	return &PushService{db: db, sns: sns, fcmPlatformArn: fcmArn, apnsPlatformArn: apnsArn, hub: hub}
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required"` // "android" | "ios"
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

func (p *PushService) platformArn(platform string) (string, error) {
	switch platform {
	case "android":
		if p.fcmPlatformArn == "" {
			return "", errors.New("SNS_FCM_ARN not set")
		}
		return p.fcmPlatformArn, nil
	case "ios":
		if p.apnsPlatformArn != "" {
			return p.apnsPlatformArn, nil
		}
		if p.fcmPlatformArn == "" {
			return "", errors.New("SNS_APNS_ARN not set")
		}
		return p.fcmPlatformArn, nil
	default:
		return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, platform)
	}
}

func (p *PushService) RegisterDevice(ctx context.Context, userID uint, platform, token string) (*models.PushToken, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	appArn, err := p.platformArn(platform)
	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}

	var endpoint string
	if p.sns != nil && err == nil {
		out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
			PlatformApplicationArn: aws.String(appArn),
			Token:                  aws.String(token),
		})
		if err != nil {
			return nil, fmt.Errorf("create platform endpoint: %w", err)
		}
		endpoint = aws.ToString(out.EndpointArn)
	}

	hash := tokenHash(token)
	var existing models.PushToken
	err = p.db.Where("user_id = ? AND token_hash = ?", userID, hash).First(&existing).Error
	switch {
	case err == nil:
		existing.Platform = platform
		existing.Enabled = true
		if endpoint != "" {
			existing.EndpointARN = endpoint
		}
		existing.UpdatedAt = time.Now()
		if err := p.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		dev := &models.PushToken{
			UserID:      userID,
			Platform:    platform,
			TokenHash:   hash,
			EndpointARN: endpoint,
			Enabled:     true,
		}
		if err := p.db.Create(dev).Error; err != nil {
			return nil, err
		}
		return dev, nil
	default:
		return nil, err
	}
}

// PushToUser publishes to every enabled endpoint of userID and mirrors the
// message on the realtime socket. It returns how many endpoints accepted it.
func (p *PushService) PushToUser(ctx context.Context, userID uint, title, body string, data map[string]string) (int, error) {
	if p.hub != nil {
		p.hub.Broadcast(userID, EventNotification, map[string]any{"title": title, "body": body, "data": data})
	}
	if p.sns == nil {
		return 0, nil
	}
	var endpoints []models.PushToken
	if err := p.db.Where("user_id = ? AND enabled = ? AND endpoint_arn <> ''", userID, true).Find(&endpoints).Error; err != nil {
		return 0, err
	}
	if len(endpoints) == 0 {
		return 0, nil
	}

	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	if err != nil {
		return 0, err
	}
	apns, err := json.Marshal(map[string]any{
		"aps":  map[string]any{"alert": map[string]string{"title": title, "body": body}},
		"data": data,
	})
	if err != nil {
		return 0, err
	}
	raw, err := json.Marshal(map[string]string{"default": body, "GCM": string(gcm), "APNS": string(apns)})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, d := range endpoints {
		_, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			utils.PushesSent.WithLabelValues("error").Inc()
			log.Warn().Err(err).Str(utils.PACKAGE, "services").Uint(utils.USER, userID).Uint(utils.ID, d.ID).Msg("publish failed")
			continue
		}
		utils.PushesSent.WithLabelValues("ok").Inc()
		sent++
	}
	return sent, nil
}
