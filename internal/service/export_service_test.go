package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type exportSourceStub struct{}

func (exportSourceStub) ListAll(context.Context) ([]models.User, error) {
	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.User{
		{ID: "u1", Email: "a@x.com", Name: "A", Role: models.RoleAdmin, IsPremium: true, PasswordHash: "$2a$secret"},
		{ID: "u2", Email: "b@x.com", Name: "B", Role: models.RoleUser, IsPremium: true, PremiumUntil: &until},
		{ID: "u3", Email: "c@x.com", Name: "C", Role: models.RoleUser},
	}, nil
}

func (exportSourceStub) ListFull(context.Context) ([]models.Tutorial, error) {
	return []models.Tutorial{{Slug: "getting-started", Title: "Начало работы с Go", Category: "basics", Order: 1, IsFree: true, Content: "BODY"}}, nil
}

func newExportFixture() *ExportService {
	svc := NewExportService(exportSourceStub{}, exportSourceStub{}, "", nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestExportUsersCSV(t *testing.T) {
	file, err := newExportFixture().Users(context.Background(), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "users-20250102-030405.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	body := string(file.Body)
	assert.NotContains(t, body, "$2a$secret")
	assert.Contains(t, body, "a@x.com,A,admin,true,lifetime")
	assert.Contains(t, body, "b@x.com,B,user,true,2030-01-01T00:00:00Z")
	assert.Contains(t, body, "c@x.com,C,user,false,,")
}

func TestExportTutorialsPDF(t *testing.T) {
	file, err := newExportFixture().Tutorials(context.Background(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, strings.HasPrefix(string(file.Body), "%PDF-"))
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := newExportFixture().Users(context.Background(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
