package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"docproc/internal/domain"
	apperrors "docproc/pkg/errors"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewBackendClientWithHTTP(srv.URL+"/", srv.Client(), &MockLogger{})
}

func TestBackendClient_Login(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "demo@gmail.com" || pass != "Demo@123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"message":"Login successful"}`))
	})

	if err := client.Login(context.Background(), "demo@gmail.com", "Demo@123"); err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}

	err := client.Login(context.Background(), "demo@gmail.com", "wrong")
	if !apperrors.IsType(err, apperrors.ErrorTypeAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if apperrors.UserMessage(err) != domain.MsgInvalidCredentials {
		t.Fatalf("unexpected message %q", apperrors.UserMessage(err))
	}
}

func TestBackendClient_LoginNon200Success(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Login(context.Background(), "a", "b"); err == nil {
		t.Fatalf("expected only a 200 to count as success")
	}
}

func TestBackendClient_Upload(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 64*1024)
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart field file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		got, _ := io.ReadAll(file)
		if !bytes.Equal(got, content) {
			t.Errorf("uploaded bytes differ")
		}
		if header.Filename != "scan.pdf" {
			t.Errorf("unexpected filename %s", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"filename": "id_scan.pdf", "path": "/uploads/id_scan.pdf"})
	})

	var progress []int
	path, err := client.Upload(context.Background(), &domain.LocalFile{
		Name:        "scan.pdf",
		ContentType: "application/pdf",
		Data:        content,
	}, func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if path != "/uploads/id_scan.pdf" {
		t.Fatalf("unexpected path %s", path)
	}
	if len(progress) == 0 || progress[len(progress)-1] != 100 {
		t.Fatalf("expected progress to reach 100, got %v", progress)
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] <= progress[i-1] {
			t.Fatalf("expected strictly increasing progress, got %v", progress)
		}
	}
}

func TestBackendClient_UploadRejected(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Unsupported file type. Please upload a PDF, TXT, PNG, or JPG file."}`))
	})

	path, err := client.Upload(context.Background(), &domain.LocalFile{Name: "a.exe", Data: []byte("MZ")}, nil)
	if path != "" {
		t.Fatalf("expected empty path on failure, got %s", path)
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if apperrors.UserMessage(err) != domain.MsgUploadFailed {
		t.Fatalf("expected fixed upload message, got %q", apperrors.UserMessage(err))
	}
}

func TestBackendClient_ExtractText(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body["file_path"] != "/uploads/a.pdf" {
			t.Errorf("unexpected file_path %q", body["file_path"])
		}
		w.Write([]byte(`{"text":"Hello","forms":[{"key":"Name","value":"Ada"}],"tables":[{"headers":["h"],"rows":[["c"]]}]}`))
	})

	resp, err := client.ExtractText(context.Background(), "/uploads/a.pdf")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	result := resp.ToResult("f")
	if result.Text != "Hello" || len(result.Fields) != 1 || len(result.Tables) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBackendClient_ExtractTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"No text extracted"}`, "No text extracted"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, domain.MsgExtractionFailed},
		{"no body", http.StatusInternalServerError, ``, domain.MsgExtractionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.ExtractText(context.Background(), "/uploads/a.pdf")
			if !apperrors.IsType(err, apperrors.ErrorTypeTransport) {
				t.Fatalf("expected transport error, got %v", err)
			}
			if apperrors.UserMessage(err) != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, apperrors.UserMessage(err))
			}
		})
	}
}

func TestBackendClient_ExportData(t *testing.T) {
	csv := []byte("Text\r\nhello\r\n")
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/export_data/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("file_path") != "/uploads/a b.pdf" || r.URL.Query().Get("format") != "csv" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write(csv)
	})

	rendition, err := client.ExportData(context.Background(), "/uploads/a b.pdf", domain.ExportCSV)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer rendition.Release()

	if rendition.ContentType != "text/csv; charset=utf-8" {
		t.Fatalf("expected content type to be echoed, got %s", rendition.ContentType)
	}
	if !bytes.Equal(rendition.Data, csv) {
		t.Fatalf("expected bytes to be unmodified, got %q", rendition.Data)
	}
}

func TestBackendClient_ExportDataFailure(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Error exporting data"}`))
	})

	_, err := client.ExportData(context.Background(), "/uploads/a.pdf", domain.ExportJSON)
	if !apperrors.IsType(err, apperrors.ErrorTypeExport) {
		t.Fatalf("expected export error, got %v", err)
	}
	if apperrors.ShouldSurface(err) {
		t.Fatalf("expected export error to be log-only")
	}
}

func TestBackendClient_FetchFile(t *testing.T) {
	client := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/a.png" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})

	rendition, err := client.FetchFile(context.Background(), "uploads/a.png")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer rendition.Release()
	if string(rendition.Data) != "png-bytes" || rendition.ContentType != "image/png" {
		t.Fatalf("unexpected rendition %+v", rendition)
	}
}
