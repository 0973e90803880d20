package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bingoparty/bingoparty-go/internal/model"
	"github.com/bingoparty/bingoparty-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// newService points a generator at a stub completions endpoint
func (s *ServiceSuite) newService(handler http.HandlerFunc) (*Service, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := New(Config{
		APIURL: server.URL,
		Model:  "test-model",
	}, testutil.NopLogger())
	return svc, server
}

// completionResponse wraps content in the chat completions response shape
func completionResponse(content string) []byte {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func optionArray(n int) string {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("Generated option %d", i+1)
	}
	data, _ := json.Marshal(options)
	return string(data)
}

func (s *ServiceSuite) TestGenerateFromJSONArray() {
	var gotRequest chatRequest
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&gotRequest))
		w.Write(completionResponse(optionArray(24)))
	})
	defer server.Close()

	options, err := svc.GenerateOptions(context.Background(), "office meetings")

	s.Require().NoError(err)
	s.Len(options, 24)
	s.Equal("Generated option 1", options[0])
	s.Equal("Generated option 24", options[23])

	s.Equal("test-model", gotRequest.Model)
	s.Require().Len(gotRequest.Messages, 2)
	s.Equal("system", gotRequest.Messages[0].Role)
	s.Contains(gotRequest.Messages[1].Content, "office meetings")
}

func (s *ServiceSuite) TestGenerateSendsAPIKey() {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(completionResponse(optionArray(24)))
	}))
	defer server.Close()

	svc := New(Config{APIURL: server.URL, Model: "test-model", APIKey: "secret"}, testutil.NopLogger())

	_, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().NoError(err)
	s.Equal("Bearer secret", gotAuth)
}

func (s *ServiceSuite) TestGenerateFromMarkdownWrappedArray() {
	content := "Here are your options:\n```json\n" + optionArray(24) + "\n```\nEnjoy!"
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse(content))
	})
	defer server.Close()

	options, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().NoError(err)
	s.Len(options, 24)
	s.Equal("Generated option 1", options[0])
}

func (s *ServiceSuite) TestGenerateFromNumberedList() {
	content := ""
	for i := 1; i <= 24; i++ {
		content += fmt.Sprintf("%d. Listed option %d\n", i, i)
	}
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse(content))
	})
	defer server.Close()

	options, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().NoError(err)
	s.Len(options, 24)
	s.Equal("Listed option 1", options[0])
	s.Equal("Listed option 24", options[23])
}

func (s *ServiceSuite) TestGeneratePadsShortOutput() {
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse(optionArray(10)))
	})
	defer server.Close()

	options, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().NoError(err)
	s.Len(options, 24)
	s.Equal("Generated option 10", options[9])
	s.Equal("Option 11", options[10])
	s.Equal("Option 24", options[23])
}

func (s *ServiceSuite) TestGenerateTruncatesLongOutput() {
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse(optionArray(30)))
	})
	defer server.Close()

	options, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().NoError(err)
	s.Len(options, 24)
}

func (s *ServiceSuite) TestGenerateRejectedStatus() {
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().ErrorIs(err, model.ErrGeneratorUnavailable)
}

func (s *ServiceSuite) TestGenerateTransportFailure() {
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // Connection refused

	_, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().ErrorIs(err, model.ErrGeneratorUnavailable)
}

func (s *ServiceSuite) TestGenerateEmptyResponse() {
	svc, server := s.newService(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionResponse(""))
	})
	defer server.Close()

	_, err := svc.GenerateOptions(context.Background(), "theme")

	s.Require().ErrorIs(err, model.ErrGeneratorUnavailable)
}

func TestParseOptionsStripsDecoration(t *testing.T) {
	content := "- \"First thing\"\n* Second thing,\n3. Third thing\n\n---\n"
	options := parseOptions(content)

	if len(options) != 3 {
		t.Fatalf("expected 3 options, got %d: %v", len(options), options)
	}
	if options[0] != "First thing" || options[1] != "Second thing" || options[2] != "Third thing" {
		t.Fatalf("unexpected options: %v", options)
	}
}
