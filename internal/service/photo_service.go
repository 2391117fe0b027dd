package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/rs/zerolog"

	"gardenbook/api/internal/config"
	"gardenbook/api/internal/ids"
	"gardenbook/api/internal/media/sniffer"
	"gardenbook/api/internal/storage"
)

const maxPhotoBytes = 10 << 20

var (
	ErrPhotoTooLarge        = errors.New("photo exceeds size limit")
	ErrUnsupportedPhotoType = errors.New("unsupported photo type")
)

// PhotoService stores plant photos in object storage and records the public
// URL on the plant row.
type PhotoService struct {
	plants PlantStore
	store  *storage.ObjectStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewPhotoService(plants PlantStore, store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *PhotoService {
	return &PhotoService{
		plants: plants,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

type UploadPhotoInput struct {
	PlantID string
	File    multipart.File
	Header  *multipart.FileHeader
}

func (s *PhotoService) Upload(ctx context.Context, input UploadPhotoInput) (string, error) {
	if input.File == nil || input.Header == nil {
		return "", errors.New("invalid file payload")
	}
	if input.Header.Size > maxPhotoBytes {
		return "", ErrPhotoTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return "", ErrPhotoTooLarge
	}

	result, err := sniffer.DetectHead(head(data))
	if err != nil {
		return "", ErrUnsupportedPhotoType
	}

	key := fmt.Sprintf("plants/%s/%s.%s", input.PlantID, ids.New(), result.Type)
	if err := s.store.Put(ctx, key, result.MIME, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", err
	}

	photoURL := s.store.URL(key)
	if err := s.plants.SetPhotoURL(ctx, input.PlantID, photoURL); err != nil {
		return "", err
	}

	s.log.Debug().Str("plant_id", input.PlantID).Str("key", key).Msg("plant photo stored")
	return photoURL, nil
}

func head(data []byte) []byte {
	if len(data) > 512 {
		return data[:512]
	}
	return data
}
