package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newBlogApp wires the blog handlers behind a stub gate that injects the
// given user as the authenticated identity.
func newBlogApp(s *Server, user *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})
	app.Get("/blog", s.GetBlogs)
	app.Post("/blog/create-blog", s.CreateBlog)
	app.Get("/blog/blogs/:postId", s.GetBlog)
	app.Put("/blog/blogs/:postId", s.UpdateBlog)
	app.Delete("/blog/blogs/:postId", s.DeleteBlog)
	app.Get("/blog/:userId", s.GetBlogsByUser)
	return app
}

func TestCreateBlog(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}

	tests := []struct {
		name           string
		user           *models.User
		body           map[string]string
		mockSetup      func(*MockPostRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			user: alice,
			body: map[string]string{"title": "Hello", "content": "World"},
			mockSetup: func(m *MockPostRepository) {
				m.On("CreateForUser", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
					args.Get(1).(*models.Post).ID = primitive.NewObjectID()
				}).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Missing title",
			user:           alice,
			body:           map[string]string{"content": "World"},
			mockSetup:      func(m *MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing content",
			user:           alice,
			body:           map[string]string{"title": "Hello"},
			mockSetup:      func(m *MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Backing user record vanished",
			user:           nil,
			body:           map[string]string{"title": "Hello", "content": "World"},
			mockSetup:      func(m *MockPostRepository) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPosts := new(MockPostRepository)
			tt.mockSetup(mockPosts)
			s := &Server{config: testConfig(), postRepo: mockPosts}
			app := newBlogApp(s, tt.user)

			resp := postJSON(t, app, "/blog/create-blog", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusCreated {
				body := decodeBody(t, resp)
				assert.Equal(t, "Hello", body["title"])
				assert.Equal(t, "World", body["content"])
				author := body["author"].(map[string]interface{})
				assert.Equal(t, alice.ID.Hex(), author["id"])
				assert.Equal(t, "alice", author["username"])
			}
		})
	}
}

func TestGetBlog_Ownership(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	bob := &models.User{ID: primitive.NewObjectID(), Username: "bob"}
	post := &models.Post{
		ID:       primitive.NewObjectID(),
		Title:    "Hello",
		Content:  "World",
		AuthorID: alice.ID,
	}

	tests := []struct {
		name           string
		user           *models.User
		expectedStatus int
	}{
		{"Owner can read", alice, http.StatusOK},
		{"Non-owner denied", bob, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPosts := new(MockPostRepository)
			mockPosts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
			s := &Server{config: testConfig(), postRepo: mockPosts}
			app := newBlogApp(s, tt.user)

			req := httptest.NewRequest(http.MethodGet, "/blog/blogs/"+post.ID.Hex(), nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestGetBlog_NotFound(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}

	mockPosts := new(MockPostRepository)
	mockPosts.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)
	s := &Server{config: testConfig(), postRepo: mockPosts}
	app := newBlogApp(s, alice)

	for _, path := range []string{
		"/blog/blogs/" + primitive.NewObjectID().Hex(), // absent
		"/blog/blogs/not-a-hex-id",                     // malformed
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		_ = resp.Body.Close()
	}
}

func TestUpdateBlog_PartialUpdate(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	post := &models.Post{
		ID:       primitive.NewObjectID(),
		Title:    "Hello",
		Content:  "World",
		AuthorID: alice.ID,
	}

	mockPosts := new(MockPostRepository)
	mockPosts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
	mockPosts.On("Update", mock.Anything, mock.Anything).Return(nil)
	s := &Server{config: testConfig(), postRepo: mockPosts}
	app := newBlogApp(s, alice)

	raw, _ := json.Marshal(map[string]string{"title": "Hi"})
	req := httptest.NewRequest(http.MethodPut, "/blog/blogs/"+post.ID.Hex(), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Hi", body["title"])
	// Omitted field keeps its prior value
	assert.Equal(t, "World", body["content"])
}

func TestUpdateBlog_NonOwnerDenied(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	bob := &models.User{ID: primitive.NewObjectID(), Username: "bob"}
	post := &models.Post{ID: primitive.NewObjectID(), Title: "Hello", AuthorID: alice.ID}

	mockPosts := new(MockPostRepository)
	mockPosts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
	s := &Server{config: testConfig(), postRepo: mockPosts}
	app := newBlogApp(s, bob)

	raw, _ := json.Marshal(map[string]string{"title": "Hijacked"})
	req := httptest.NewRequest(http.MethodPut, "/blog/blogs/"+post.ID.Hex(), bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	mockPosts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteBlog(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	bob := &models.User{ID: primitive.NewObjectID(), Username: "bob"}
	post := &models.Post{ID: primitive.NewObjectID(), Title: "Hello", AuthorID: alice.ID}

	t.Run("Owner deletes", func(t *testing.T) {
		mockPosts := new(MockPostRepository)
		mockPosts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
		mockPosts.On("DeleteForUser", mock.Anything, post.ID, alice.ID).Return(nil)
		s := &Server{config: testConfig(), postRepo: mockPosts}
		app := newBlogApp(s, alice)

		req := httptest.NewRequest(http.MethodDelete, "/blog/blogs/"+post.ID.Hex(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Contains(t, body["message"], "deleted")
		mockPosts.AssertCalled(t, "DeleteForUser", mock.Anything, post.ID, alice.ID)
	})

	t.Run("Non-owner denied", func(t *testing.T) {
		mockPosts := new(MockPostRepository)
		mockPosts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
		s := &Server{config: testConfig(), postRepo: mockPosts}
		app := newBlogApp(s, bob)

		req := httptest.NewRequest(http.MethodDelete, "/blog/blogs/"+post.ID.Hex(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockPosts.AssertNotCalled(t, "DeleteForUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetBlogs_ResolvesAuthors(t *testing.T) {
	alice := &models.User{ID: primitive.NewObjectID(), Username: "alice"}
	ghostID := primitive.NewObjectID()

	posts := []*models.Post{
		{ID: primitive.NewObjectID(), Title: "Hello", Content: "World", AuthorID: alice.ID},
		{ID: primitive.NewObjectID(), Title: "Orphan", Content: "No author", AuthorID: ghostID},
	}

	mockPosts := new(MockPostRepository)
	mockPosts.On("List", mock.Anything, 10, 0).Return(posts, nil)
	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
	mockUsers.On("GetByID", mock.Anything, ghostID).Return(nil, nil)

	s := &Server{config: testConfig(), userRepo: mockUsers, postRepo: mockPosts}
	app := newBlogApp(s, nil)

	req := httptest.NewRequest(http.MethodGet, "/blog", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body, 2)
	assert.Equal(t, "alice", body[0]["author"])
	// A vanished account renders as a null author
	assert.Nil(t, body[1]["author"])
}

func TestGetBlogsByUser(t *testing.T) {
	post1 := primitive.NewObjectID()
	post2 := primitive.NewObjectID()
	alice := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  "alice",
		BlogPosts: []primitive.ObjectID{post1, post2},
	}
	posts := []*models.Post{
		{ID: post1, Title: "First", Content: "A", AuthorID: alice.ID},
		{ID: post2, Title: "Second", Content: "B", AuthorID: alice.ID},
	}

	t.Run("Success", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByID", mock.Anything, alice.ID).Return(alice, nil)
		mockPosts := new(MockPostRepository)
		mockPosts.On("GetByIDs", mock.Anything, alice.BlogPosts).Return(posts, nil)

		s := &Server{config: testConfig(), userRepo: mockUsers, postRepo: mockPosts}
		app := newBlogApp(s, nil)

		req := httptest.NewRequest(http.MethodGet, "/blog/"+alice.ID.Hex(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 2)
		for _, item := range body {
			assert.Equal(t, "alice", item["author"])
			assert.NotEmpty(t, item["id"])
		}
	})

	t.Run("User not found", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		mockUsers.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)

		s := &Server{config: testConfig(), userRepo: mockUsers, postRepo: new(MockPostRepository)}
		app := newBlogApp(s, nil)

		req := httptest.NewRequest(http.MethodGet, "/blog/"+primitive.NewObjectID().Hex(), nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
