package receipt

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/davidchanit/receipt-scanner-backend/domain"
	"github.com/davidchanit/receipt-scanner-backend/entities"
)

type fakeRepository struct {
	receipts map[string]*entities.Receipt
	creates  int
	deletes  int
	pingErr  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{receipts: map[string]*entities.Receipt{}}
}

func (r *fakeRepository) CreateReceipt(_ context.Context, receipt *entities.Receipt) error {
	r.creates++
	r.receipts[receipt.ID.String()] = receipt
	return nil
}

func (r *fakeRepository) GetReceiptByID(_ context.Context, id string) (*entities.Receipt, error) {
	receipt, ok := r.receipts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return receipt, nil
}

func (r *fakeRepository) GetReceipts(_ context.Context) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	for _, receipt := range r.receipts {
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

func (r *fakeRepository) DeleteReceipt(_ context.Context, id string) error {
	r.deletes++
	delete(r.receipts, id)
	return nil
}

func (r *fakeRepository) Ping(context.Context) error { return r.pingErr }

type fakeStorage struct {
	uploads int
	deleted []string
}

func (s *fakeStorage) UploadFile(_ context.Context, fileName string, _ []byte, _ string, folder string) (string, error) {
	s.uploads++
	return folder + "/" + fileName, nil
}

func (s *fakeStorage) DeleteFile(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func (s *fakeStorage) GetPublicLinkKey(objectKey string) string {
	return "/uploads/" + objectKey
}

func (s *fakeStorage) GetObjectKeyFromLink(link string) string {
	return link[len("/uploads/"):]
}

type fakeOrchestrator struct {
	result domain.ParsedReceipt
	calls  int
}

func (o *fakeOrchestrator) Extract(context.Context, []byte, string) domain.ParsedReceipt {
	o.calls++
	return o.result
}

func (o *fakeOrchestrator) BackendNames() []string {
	return []string{"local-ocr"}
}

func validParsedReceipt() domain.ParsedReceipt {
	return domain.ParsedReceipt{
		Date:       "2024-01-15",
		Currency:   "USD",
		VendorName: "Test Store",
		Items:      []domain.ParsedItem{{Name: "Coffee", Cost: 3.5}},
		Tax:        0.35,
		Total:      3.85,
	}
}

func createFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename)},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["image"][0]
}

func newTestService(repo *fakeRepository, store *fakeStorage, orch *fakeOrchestrator, maxSize int64) ReceiptService {
	return NewReceiptService(repo, store, orch, maxSize, []string{"image/jpeg", "image/jpg", "image/png"})
}

func TestExtractReceiptDetailsSuccess(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	orch := &fakeOrchestrator{result: validParsedReceipt()}
	service := newTestService(repo, store, orch, 1<<20)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.jpg", "image/jpeg", []byte("fake image bytes")),
	}

	res, err := service.ExtractReceiptDetails(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "Test Store", res.VendorName)
	assert.Equal(t, "2024-01-15", res.Date)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Coffee", res.Items[0].Name)
	assert.NotEmpty(t, res.ID)
	assert.Contains(t, res.ImageURL, "/uploads/receipts/receipt-")

	assert.Equal(t, 1, store.uploads)
	assert.Equal(t, 1, orch.calls)
	assert.Equal(t, 1, repo.creates)
	assert.Empty(t, store.deleted)
}

func TestExtractReceiptDetailsFileTooLarge(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	orch := &fakeOrchestrator{result: validParsedReceipt()}
	service := newTestService(repo, store, orch, 4)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.jpg", "image/jpeg", []byte("more than four bytes")),
	}

	_, err := service.ExtractReceiptDetails(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	assert.Zero(t, store.uploads, "file store must not be invoked")
	assert.Zero(t, orch.calls, "extraction must not be invoked")
	assert.Zero(t, repo.creates, "record store must not be invoked")
}

func TestExtractReceiptDetailsDisallowedMimeType(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	orch := &fakeOrchestrator{result: validParsedReceipt()}
	service := newTestService(repo, store, orch, 1<<20)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.pdf", "application/pdf", []byte("%PDF-1.4")),
	}

	_, err := service.ExtractReceiptDetails(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)

	assert.Zero(t, store.uploads)
	assert.Zero(t, orch.calls)
	assert.Zero(t, repo.creates)
}

func TestExtractReceiptDetailsDisallowedExtension(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	orch := &fakeOrchestrator{result: validParsedReceipt()}
	service := newTestService(repo, store, orch, 1<<20)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.gif", "image/png", []byte("GIF89a")),
	}

	_, err := service.ExtractReceiptDetails(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidImageFormat)
	assert.Zero(t, store.uploads)
}

func TestExtractReceiptDetailsInvalidExtractionDeletesImage(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	invalid := validParsedReceipt()
	invalid.Tax = -1
	orch := &fakeOrchestrator{result: invalid}
	service := newTestService(repo, store, orch, 1<<20)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.png", "image/png", []byte("fake image bytes")),
	}

	_, err := service.ExtractReceiptDetails(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidExtractionResult)

	assert.Equal(t, 1, store.uploads)
	require.Len(t, store.deleted, 1, "compensating delete must happen exactly once")
	assert.Contains(t, store.deleted[0], "receipts/receipt-")
	assert.Zero(t, repo.creates, "no partial record may be persisted")
}

func TestGetReceiptByIDNotFound(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeStorage{}, &fakeOrchestrator{}, 1<<20)

	_, err := service.GetReceiptByID(context.Background(), "7f9be005-90d8-4f54-8c33-c27b563cbcd7")
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
}

func TestGetReceiptByIDInvalidUUID(t *testing.T) {
	service := newTestService(newFakeRepository(), &fakeStorage{}, &fakeOrchestrator{}, 1<<20)

	_, err := service.GetReceiptByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrParseUUID)
}

func TestDeleteReceiptNotFound(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	service := newTestService(repo, store, &fakeOrchestrator{}, 1<<20)

	err := service.DeleteReceipt(context.Background(), "7f9be005-90d8-4f54-8c33-c27b563cbcd7")
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)

	assert.Zero(t, repo.deletes)
	assert.Empty(t, store.deleted, "file store must not be touched for unknown ids")
}

func TestDeleteReceiptRemovesImage(t *testing.T) {
	repo := newFakeRepository()
	store := &fakeStorage{}
	orch := &fakeOrchestrator{result: validParsedReceipt()}
	service := newTestService(repo, store, orch, 1<<20)

	req := domain.ExtractReceiptRequest{
		Image: createFileHeader(t, "receipt.jpg", "image/jpeg", []byte("fake image bytes")),
	}
	created, err := service.ExtractReceiptDetails(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, service.DeleteReceipt(context.Background(), created.ID))

	assert.Equal(t, 1, repo.deletes)
	require.Len(t, store.deleted, 1)
	assert.Contains(t, store.deleted[0], "receipts/receipt-")
	_, err = service.GetReceiptByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrReceiptNotFound)
}

func TestHealthCheck(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, &fakeStorage{}, &fakeOrchestrator{}, 1<<20)

	res := service.HealthCheck(context.Background())
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "up", res.Database)
	require.Len(t, res.Backends, 3)
	for _, backend := range res.Backends {
		if backend.Name == "local-ocr" {
			assert.True(t, backend.Available)
		} else {
			assert.False(t, backend.Available)
		}
	}
}

func TestHealthCheckDegraded(t *testing.T) {
	repo := newFakeRepository()
	repo.pingErr = assert.AnError
	service := newTestService(repo, &fakeStorage{}, &fakeOrchestrator{}, 1<<20)

	res := service.HealthCheck(context.Background())
	assert.Equal(t, "degraded", res.Status)
	assert.Equal(t, "down", res.Database)
}
