package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"testing"
	_ "time/tzdata"

	"campus-complaints/internal/config"
	"campus-complaints/internal/database"
	"campus-complaints/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "service.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func mustRegister(t *testing.T, users *UserService, name, username string) *models.User {
	t.Helper()
	u, err := users.Register(context.Background(), RegisterInput{
		Name:     name,
		Username: username,
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func mustAdmin(t *testing.T, users *UserService, username string) *models.User {
	t.Helper()
	created, err := users.EnsureAdmin(context.Background(), username, "adminpass", "Warden")
	require.NoError(t, err)
	require.True(t, created)
	u, err := users.Authenticate(context.Background(), username, "adminpass")
	require.NoError(t, err)
	return u
}

func photoHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/submit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}
