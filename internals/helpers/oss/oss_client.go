package helper

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/constants"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const trashPrefix = "trash"

// CoverStorage dipakai controller buku; OSSService implementasi produksinya.
type CoverStorage interface {
	UploadCover(ctx context.Context, bookID uuid.UUID, fh *multipart.FileHeader) (publicURL, objectKey string, err error)
	MoveToTrash(ctx context.Context, objectKey string) error
}

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	Prefix     string // optional: "biblioteca"
	PublicBase string
}

var _ CoverStorage = (*OSSService)(nil)

// NewOSSServiceFromEnv: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET wajib.
func NewOSSServiceFromEnv(prefix string) (*OSSService, error) {
	endpoint := normalizeEndpoint(configs.GetEnv("ALI_OSS_ENDPOINT"))
	ak := configs.GetEnv("ALI_OSS_ACCESS_KEY")
	sk := configs.GetEnv("ALI_OSS_SECRET_KEY")
	bucketName := configs.GetEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []oss.ClientOption
	if sts := configs.GetEnv("ALI_OSS_SECURITY_TOKEN"); sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	log.Printf("[OSS] ✅ bucket=%s endpoint=%s", bucketName, endpoint)

	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		Prefix:     strings.Trim(prefix, "/"),
		PublicBase: configs.GetEnv("ALI_OSS_PUBLIC_BASE"),
	}, nil
}

// UploadCover: re-encode ke WebP lalu simpan di covers/<book_id>/...
func (s *OSSService) UploadCover(ctx context.Context, bookID uuid.UUID, fh *multipart.FileHeader) (string, string, error) {
	if fh == nil {
		return "", "", fiber.NewError(fiber.StatusBadRequest, "Archivo no encontrado")
	}
	if fh.Size > constants.MaxCoverUploadBytes {
		return "", "", fiber.NewError(fiber.StatusRequestEntityTooLarge, "La imagen supera 5MB")
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}
	defer src.Close()

	data, err := ConvertToWebP(src, fh.Filename, CoverWebPOptions())
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return "", "", fiber.NewError(fiber.StatusUnsupportedMediaType, "Formato no soportado (use jpg/png/webp)")
		}
		return "", "", err
	}

	key := s.buildObjectKey("covers/"+bookID.String(), "cover.webp", time.Now())
	err = s.Bucket.PutObject(key, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType("image/webp"),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
	if err != nil {
		return "", "", err
	}
	return s.PublicURL(key), key, nil
}

// MoveToTrash: sampul lama dipindah ke trash/YYYY/MM/DD/..., dihapus reaper nanti.
func (s *OSSService) MoveToTrash(ctx context.Context, objectKey string) error {
	if objectKey == "" {
		return nil
	}
	dst := trashKey(objectKey, time.Now())
	if _, err := s.Bucket.CopyObject(objectKey, dst, oss.WithContext(ctx)); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("copy %q -> %q: %w", objectKey, dst, err)
	}
	if err := s.Bucket.DeleteObject(objectKey, oss.WithContext(ctx)); err != nil {
		log.Printf("[OSS] ⚠️ hapus %s gagal (sudah di trash): %v", objectKey, err)
	}
	return nil
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return strings.TrimRight(s.PublicBase, "/") + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

func (s *OSSService) buildObjectKey(dir, filename string, now time.Time) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	name := fmt.Sprintf("%s_%s_%s%s", base, now.Format("20060102_150405"), randHex(3), ext)

	parts := make([]string, 0, 3)
	for _, p := range []string{s.Prefix, strings.Trim(dir, "/"), name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

func trashKey(key string, now time.Time) string {
	return path.Join(trashPrefix, now.Format("2006/01/02"), fmt.Sprintf("%s__%s", now.Format("150405"), path.Base(key)))
}

func normalizeEndpoint(ep string) string {
	ep = strings.TrimSpace(ep)
	if ep == "" || strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "https://" + ep
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	if errors.As(err, &se) {
		return se.StatusCode == 404
	}
	return false
}

// GetImageFile mencoba beberapa nama field multipart.
func GetImageFile(c *fiber.Ctx, fieldNames ...string) (*multipart.FileHeader, error) {
	if len(fieldNames) == 0 {
		fieldNames = []string{"file", "image", "cover"}
	}
	for _, name := range fieldNames {
		if fh, err := c.FormFile(name); err == nil && fh != nil {
			if !constants.IsCoverImage(fh.Filename) {
				return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "Formato no soportado (use jpg/png/webp)")
			}
			return fh, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, "Archivo de imagen requerido (campo: "+strings.Join(fieldNames, "/")+")")
}
