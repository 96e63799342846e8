package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetBlogs handles GET /api/blog (public). Each post's author is resolved
// from the users collection at read time; a vanished account renders as a
// null author.
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 10)

	posts, err := s.postRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	out := make([]models.PostSummary, 0, len(posts))
	for _, post := range posts {
		author, err := s.resolveUsername(ctx, post.AuthorID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		out = append(out, models.PostSummary{
			Title:   post.Title,
			Content: post.Content,
			Author:  author,
		})
	}

	return c.JSON(out)
}

// GetBlogsByUser handles GET /api/blog/:userId (public). Posts are drawn
// from the user's owned-post list and stamped with the owner's username as
// of this request.
func (s *Server) GetBlogsByUser(c *fiber.Ctx) error {
	ctx := c.Context()

	userID, err := s.parseIDParam(c, "userId", "User")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", c.Params("userId")))
	}

	posts, err := s.postRepo.GetByIDs(ctx, user.BlogPosts)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	out := make([]models.UserPostSummary, 0, len(posts))
	for _, post := range posts {
		out = append(out, models.UserPostSummary{
			ID:      post.ID,
			Title:   post.Title,
			Content: post.Content,
			Author:  user.Username,
		})
	}

	return c.JSON(out)
}

// CreateBlog handles POST /api/blog/create-blog (authenticated). The author
// reference is taken from the authenticated identity, never from the body.
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	ctx := c.Context()

	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and content are required"))
	}

	post := &models.Post{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: user.ID,
	}

	if err := s.postRepo.CreateForUser(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(s.postDetail(post, user))
}

// GetBlog handles GET /api/blog/blogs/:postId (authenticated, owner only).
func (s *Server) GetBlog(c *fiber.Ctx) error {
	post, user, ok := s.loadOwnedPost(c)
	if !ok {
		return nil
	}

	return c.JSON(s.postDetail(post, user))
}

// UpdateBlog handles PUT /api/blog/blogs/:postId (authenticated, owner only).
// Only the supplied fields change; omitted fields keep their prior values.
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	ctx := c.Context()

	post, user, ok := s.loadOwnedPost(c)
	if !ok {
		return nil
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(s.postDetail(post, user))
}

// DeleteBlog handles DELETE /api/blog/blogs/:postId (authenticated, owner only).
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	ctx := c.Context()

	post, user, ok := s.loadOwnedPost(c)
	if !ok {
		return nil
	}

	if err := s.postRepo.DeleteForUser(ctx, post.ID, user.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"message": "Blog post deleted successfully",
	})
}

// loadOwnedPost fetches the post named by :postId and enforces the
// ownership check: the authenticated identity must match the post's
// recorded author by identifier. On failure the response has already been
// written and ok is false.
func (s *Server) loadOwnedPost(c *fiber.Ctx) (*models.Post, *models.User, bool) {
	user, err := s.currentUser(c)
	if err != nil {
		return nil, nil, false
	}

	postID, err := s.parseIDParam(c, "postId", "Blog post")
	if err != nil {
		return nil, nil, false
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
		return nil, nil, false
	}
	if post == nil {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Blog post", c.Params("postId")))
		return nil, nil, false
	}

	if post.AuthorID != user.ID {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Access denied. Not the original author of post"))
		return nil, nil, false
	}

	return post, user, true
}

// postDetail builds the single-post response shape. The user is the post's
// author; ownership is checked before this is called.
func (s *Server) postDetail(post *models.Post, author *models.User) models.PostDetail {
	return models.PostDetail{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Author: models.AuthorRef{
			ID:       author.ID,
			Username: author.Username,
		},
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
