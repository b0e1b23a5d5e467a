package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var (
	ErrDBMsg      = "db error"
	UpdateNoteMsg = "notes.UpdateNote"
	mockNote      = mock.AnythingOfType("*notes.Note")
	mockComment   = mock.AnythingOfType("*notes.Comment")
)

// MockNotesRepo is a mock implementation of Repository
type MockNotesRepo struct {
	mock.Mock
}

func (m *MockNotesRepo) Create(ctx context.Context, note *Note) error {
	return m.Called(ctx, note).Error(0)
}

func (m *MockNotesRepo) FindByID(ctx context.Context, noteID bson.ObjectID) (*Note, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Update(ctx context.Context, userID, noteID bson.ObjectID, patch UpdateNote) (*Note, error) {
	args := m.Called(ctx, userID, noteID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockNotesRepo) Delete(ctx context.Context, userID, noteID bson.ObjectID) error {
	return m.Called(ctx, userID, noteID).Error(0)
}

func (m *MockNotesRepo) ListWithAggregates(ctx context.Context, filter ListFilter) ([]*NoteView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*NoteView), args.Error(1)
}

func (m *MockNotesRepo) GetWithAggregates(ctx context.Context, noteID bson.ObjectID) (*NoteView, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*NoteView), args.Error(1)
}

func (m *MockNotesRepo) IncrementViews(ctx context.Context, noteID bson.ObjectID) error {
	return m.Called(ctx, noteID).Error(0)
}

// MockRatingsRepo is a mock implementation of RatingsRepository
type MockRatingsRepo struct {
	mock.Mock
}

func (m *MockRatingsRepo) Upsert(ctx context.Context, noteID, userID bson.ObjectID, score int) error {
	return m.Called(ctx, noteID, userID, score).Error(0)
}

func (m *MockRatingsRepo) Delete(ctx context.Context, noteID, userID bson.ObjectID) error {
	return m.Called(ctx, noteID, userID).Error(0)
}

func (m *MockRatingsRepo) FindScore(ctx context.Context, noteID, userID bson.ObjectID) (int, error) {
	args := m.Called(ctx, noteID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRatingsRepo) Stats(ctx context.Context, noteID bson.ObjectID) (RatingStats, error) {
	args := m.Called(ctx, noteID)
	return args.Get(0).(RatingStats), args.Error(1)
}

// MockCommentsRepo is a mock implementation of CommentsRepository
type MockCommentsRepo struct {
	mock.Mock
}

func (m *MockCommentsRepo) Create(ctx context.Context, c *Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommentsRepo) FindByID(ctx context.Context, commentID bson.ObjectID) (*Comment, error) {
	args := m.Called(ctx, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockCommentsRepo) Delete(ctx context.Context, commentID bson.ObjectID) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *MockCommentsRepo) ListByNote(ctx context.Context, noteID bson.ObjectID, limit int64) ([]*Comment, error) {
	args := m.Called(ctx, noteID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Comment), args.Error(1)
}

// MockUsers is a mock implementation of UserDirectory
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) FindIDByUsername(ctx context.Context, username string) (bson.ObjectID, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(bson.ObjectID), args.Error(1)
}

// MockViews is a mock implementation of ViewTracker
type MockViews struct {
	mock.Mock
}

func (m *MockViews) FirstView(ctx context.Context, viewerID, noteID bson.ObjectID) (bool, error) {
	args := m.Called(ctx, viewerID, noteID)
	return args.Bool(0), args.Error(1)
}

// MockBus is a mock implementation of Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) Broadcast(ctx context.Context, ev NoteEvent) {
	m.Called(ctx, ev)
}

type mocks struct {
	notes    *MockNotesRepo
	ratings  *MockRatingsRepo
	comments *MockCommentsRepo
	users    *MockUsers
	views    *MockViews
	bus      *MockBus
}

func (m mocks) assert(t *testing.T) {
	m.notes.AssertExpectations(t)
	m.ratings.AssertExpectations(t)
	m.comments.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.views.AssertExpectations(t)
	m.bus.AssertExpectations(t)
}

// newServiceWithMocks wires together a Service + fresh mocks and lets the
// caller register expectations before the test starts.
func newServiceWithMocks(t *testing.T, setup func(m mocks)) (*Service, mocks) {
	t.Helper()

	m := mocks{
		notes:    new(MockNotesRepo),
		ratings:  new(MockRatingsRepo),
		comments: new(MockCommentsRepo),
		users:    new(MockUsers),
		views:    new(MockViews),
		bus:      new(MockBus),
	}
	if setup != nil {
		setup(m)
	}

	svc := NewService(Stores{
		Notes:    m.notes,
		Ratings:  m.ratings,
		Comments: m.comments,
		Users:    m.users,
	}, m.views, m.bus, silentLogger)
	return svc, m
}

func avg(v float64) *float64 { return &v }

func TestServiceCreate(t *testing.T) {
	userID := bson.NewObjectID()

	tests := []struct {
		name    string
		req     CreateNoteRequest
		setup   func(m mocks)
		wantErr error
	}{
		{
			name: "successful creation",
			req: CreateNoteRequest{
				Title:       "<b>Linear</b> Algebra",
				Course:      "MATH 201",
				Tags:        "math",
				Description: "Eigen <script>x</script>things",
				FileName:    " week3.pdf ",
				FileSize:    1024,
			},
			setup: func(m mocks) {
				m.notes.On("Create", mock.Anything, mockNote).Return(nil)
				m.bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
					return ev.Type == EventCreated
				})).Return()
			},
		},
		{
			name:    "title blank after sanitizing",
			req:     CreateNoteRequest{Title: "<p></p>"},
			setup:   func(mocks) {},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "file over the size limit",
			req:     CreateNoteRequest{Title: "Scans", FileName: "scans.zip", FileSize: MaxFileSize + 1},
			setup:   func(mocks) {},
			wantErr: ErrFileTooLarge,
		},
		{
			name: "repository error",
			req:  CreateNoteRequest{Title: "Test Note"},
			setup: func(m mocks) {
				m.notes.On("Create", mock.Anything, mockNote).Return(errors.New(ErrDBMsg))
			},
			wantErr: ErrCreateNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, tt.setup)
			resp, err := svc.Create(context.Background(), userID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				require.NotNil(t, resp.Note)
				assert.Equal(t, "Linear Algebra", resp.Note.Title)
				assert.Equal(t, "Eigen things", resp.Note.Description)
				assert.Equal(t, "week3.pdf", resp.Note.FileName)
				assert.Equal(t, int64(1024), resp.Note.FileSize)
				assert.Equal(t, userID, resp.Note.UserID)
				assert.Zero(t, resp.Note.ViewCount)
				assert.False(t, resp.Note.ID.IsZero())
				assert.False(t, resp.Note.CreatedAt.IsZero())
				assert.Equal(t, resp.Note.CreatedAt, resp.Note.UpdatedAt)
			}

			m.assert(t)
		})
	}
}

func TestServiceCreate_FileAtSizeLimit(t *testing.T) {
	svc, m := newServiceWithMocks(t, func(m mocks) {
		m.notes.On("Create", mock.Anything, mockNote).Return(nil)
		m.bus.On("Broadcast", mock.Anything, mock.Anything).Return()
	})

	resp, err := svc.Create(context.Background(), bson.NewObjectID(),
		CreateNoteRequest{Title: "Scans", FileName: "scans.zip", FileSize: MaxFileSize})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxFileSize), resp.Note.FileSize)
	m.assert(t)
}

func TestServiceUpdate(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	title := "Updated Title"
	blank := "  "
	oversize := int64(MaxFileSize + 1)
	now := time.Now().UTC()

	updatedNote := &Note{ID: noteID, UserID: userID, Title: title, CreatedAt: now.Add(-time.Hour), UpdatedAt: now}

	tests := []struct {
		name    string
		req     UpdateNoteRequest
		setup   func(m mocks)
		wantErr error
	}{
		{
			name: "successful update",
			req:  UpdateNoteRequest{Title: &title},
			setup: func(m mocks) {
				m.notes.On("Update", mock.Anything, userID, noteID, mock.MatchedBy(func(p UpdateNote) bool {
					return p.Title != nil && *p.Title == title && p.Course == nil
				})).Return(updatedNote, nil)
				m.bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
					return ev.Type == EventUpdated
				})).Return()
			},
		},
		{
			name:    "blank title",
			req:     UpdateNoteRequest{Title: &blank},
			setup:   func(mocks) {},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "file over the size limit",
			req:     UpdateNoteRequest{FileSize: &oversize},
			setup:   func(mocks) {},
			wantErr: ErrFileTooLarge,
		},
		{
			name: "not owner looks like not found",
			req:  UpdateNoteRequest{Title: &title},
			setup: func(m mocks) {
				m.notes.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType(UpdateNoteMsg)).Return(nil, ErrNoteNotFound)
			},
			wantErr: ErrNoteNotFound,
		},
		{
			name: "repository error",
			req:  UpdateNoteRequest{Title: &title},
			setup: func(m mocks) {
				m.notes.On("Update", mock.Anything, userID, noteID, mock.AnythingOfType(UpdateNoteMsg)).Return(nil, errors.New(ErrDBMsg))
			},
			wantErr: ErrUpdateNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, tt.setup)
			resp, err := svc.Update(context.Background(), userID, noteID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, title, resp.Note.Title)
			}

			m.assert(t)
		})
	}
}

func TestServiceDelete(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	tests := []struct {
		name    string
		setup   func(m mocks)
		wantErr error
	}{
		{
			name: "successful deletion",
			setup: func(m mocks) {
				m.notes.On("Delete", mock.Anything, userID, noteID).Return(nil)
				m.bus.On("Broadcast", mock.Anything, mock.MatchedBy(func(ev NoteEvent) bool {
					return ev.Type == EventDeleted && ev.Note.ID == noteID && ev.Note.UserID == userID
				})).Return()
			},
		},
		{
			name: "not found",
			setup: func(m mocks) {
				m.notes.On("Delete", mock.Anything, userID, noteID).Return(ErrNoteNotFound)
			},
			wantErr: ErrNoteNotFound,
		},
		{
			name: "repository error",
			setup: func(m mocks) {
				m.notes.On("Delete", mock.Anything, userID, noteID).Return(errors.New(ErrDBMsg))
			},
			wantErr: ErrDeleteNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, tt.setup)
			err := svc.Delete(context.Background(), userID, noteID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			m.assert(t)
		})
	}
}

func feedFixture() []*NoteView {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*NoteView{
		{
			Note:          Note{ID: bson.NewObjectID(), Title: "Linear Algebra", Tags: "math", FileName: "a.pdf", CreatedAt: base, ViewCount: 3},
			OwnerUsername: "alice",
			AverageRating: avg(4),
		},
		{
			Note:          Note{ID: bson.NewObjectID(), Title: "Physics", Tags: "math, science", CreatedAt: base.Add(time.Hour), ViewCount: 10},
			OwnerUsername: "bob",
			AverageRating: avg(5),
		},
		{
			Note:          Note{ID: bson.NewObjectID(), Title: "History", FileName: "essay.docx", CreatedAt: base.Add(2 * time.Hour)},
			OwnerUsername: "carol",
		},
	}
}

func titles(views []*NoteView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.Title
	}
	return out
}

func TestServiceFeed(t *testing.T) {
	tests := []struct {
		name      string
		req       FeedRequest
		want      []string
		wantQuery string
		wantSort  string
	}{
		{"default is recent", FeedRequest{}, []string{"History", "Physics", "Linear Algebra"}, "", "recent"},
		{"most viewed", FeedRequest{Sort: "most_viewed"}, []string{"Physics", "Linear Algebra", "History"}, "", "most_viewed"},
		{"top rated keeps unrated last", FeedRequest{Sort: "top_rated"}, []string{"Physics", "Linear Algebra", "History"}, "", "top_rated"},
		{"unknown sort", FeedRequest{Sort: "bogus_sort_key"}, []string{"History", "Physics", "Linear Algebra"}, "", "recent"},
		{"search ties broken by rating", FeedRequest{Q: " math ", Sort: "oldest"}, []string{"Physics", "Linear Algebra"}, "math", "oldest"},
		{"search by owner", FeedRequest{Q: "CAROL"}, []string{"History"}, "CAROL", "recent"},
		{"search without hits", FeedRequest{Q: "chemistry"}, []string{}, "chemistry", "recent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, func(m mocks) {
				m.notes.On("ListWithAggregates", mock.Anything, ListFilter{}).Return(feedFixture(), nil)
			})

			resp, err := svc.Feed(context.Background(), tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.want, titles(resp.Notes))
			assert.Equal(t, tt.wantQuery, resp.Query)
			assert.Equal(t, tt.wantSort, resp.Sort)
			m.assert(t)
		})
	}
}

func TestServiceFeed_FileTypes(t *testing.T) {
	svc, _ := newServiceWithMocks(t, func(m mocks) {
		m.notes.On("ListWithAggregates", mock.Anything, ListFilter{}).Return(feedFixture(), nil)
	})

	resp, err := svc.Feed(context.Background(), FeedRequest{})
	require.NoError(t, err)

	got := map[string]string{}
	for _, n := range resp.Notes {
		got[n.Title] = n.FileType
	}
	assert.Equal(t, map[string]string{"Linear Algebra": "pdf", "Physics": "none", "History": "office"}, got)
}

func TestServiceFeed_RepoError(t *testing.T) {
	svc, _ := newServiceWithMocks(t, func(m mocks) {
		m.notes.On("ListWithAggregates", mock.Anything, ListFilter{}).Return(nil, errors.New(ErrDBMsg))
	})

	resp, err := svc.Feed(context.Background(), FeedRequest{Q: "math"})
	assert.ErrorIs(t, err, ErrListNotes)
	assert.Nil(t, resp)
}

func TestServiceListByUsername(t *testing.T) {
	ownerID := bson.NewObjectID()

	t.Run("found", func(t *testing.T) {
		svc, m := newServiceWithMocks(t, func(m mocks) {
			m.users.On("FindIDByUsername", mock.Anything, "alice").Return(ownerID, nil)
			m.notes.On("ListWithAggregates", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
				return f.OwnerID != nil && *f.OwnerID == ownerID
			})).Return(feedFixture(), nil)
		})

		resp, err := svc.ListByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, []string{"History", "Physics", "Linear Algebra"}, titles(resp.Notes))
		m.assert(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newServiceWithMocks(t, func(m mocks) {
			m.users.On("FindIDByUsername", mock.Anything, "ghost").Return(bson.ObjectID{}, ErrUserNotFound)
		})

		_, err := svc.ListByUsername(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestServiceGet(t *testing.T) {
	viewerID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	comments := []*Comment{{ID: bson.NewObjectID(), Text: "newest"}, {ID: bson.NewObjectID(), Text: "older"}}

	view := func() *NoteView {
		return &NoteView{
			Note:          Note{ID: noteID, Title: "Graphs", FileName: "g.png", ViewCount: 7},
			AverageRating: avg(4.25),
		}
	}

	tests := []struct {
		name      string
		setup     func(m mocks)
		wantViews int64
	}{
		{
			name: "first view counts",
			setup: func(m mocks) {
				m.views.On("FirstView", mock.Anything, viewerID, noteID).Return(true, nil)
				m.notes.On("IncrementViews", mock.Anything, noteID).Return(nil)
			},
			wantViews: 8,
		},
		{
			name: "repeat view does not count",
			setup: func(m mocks) {
				m.views.On("FirstView", mock.Anything, viewerID, noteID).Return(false, nil)
			},
			wantViews: 7,
		},
		{
			name: "tracker failure skips the increment",
			setup: func(m mocks) {
				m.views.On("FirstView", mock.Anything, viewerID, noteID).Return(false, errors.New("redis down"))
			},
			wantViews: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, func(m mocks) {
				m.notes.On("GetWithAggregates", mock.Anything, noteID).Return(view(), nil)
				m.ratings.On("FindScore", mock.Anything, noteID, viewerID).Return(3, nil)
				m.comments.On("ListByNote", mock.Anything, noteID, int64(0)).Return(comments, nil)
				tt.setup(m)
			})

			detail, err := svc.Get(context.Background(), viewerID, noteID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantViews, detail.Note.ViewCount)
			assert.InDelta(t, 4.3, detail.AvgRating, 1e-9)
			assert.Equal(t, 3, detail.UserRating)
			assert.Equal(t, comments, detail.Comments)
			assert.Equal(t, FileTypeImage, detail.Note.FileType)
			m.assert(t)
		})
	}
}

func TestServiceGet_NotFound(t *testing.T) {
	noteID := bson.NewObjectID()
	svc, m := newServiceWithMocks(t, func(m mocks) {
		m.notes.On("GetWithAggregates", mock.Anything, noteID).Return(nil, ErrNoteNotFound)
	})

	_, err := svc.Get(context.Background(), bson.NewObjectID(), noteID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	m.assert(t)
}

func TestServiceGet_NoRatingsNoComments(t *testing.T) {
	viewerID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	svc, _ := newServiceWithMocks(t, func(m mocks) {
		m.notes.On("GetWithAggregates", mock.Anything, noteID).Return(&NoteView{Note: Note{ID: noteID}}, nil)
		m.views.On("FirstView", mock.Anything, viewerID, noteID).Return(false, nil)
		m.ratings.On("FindScore", mock.Anything, noteID, viewerID).Return(0, nil)
		m.comments.On("ListByNote", mock.Anything, noteID, int64(0)).Return(nil, nil)
	})

	detail, err := svc.Get(context.Background(), viewerID, noteID)
	require.NoError(t, err)
	assert.Zero(t, detail.AvgRating)
	assert.NotNil(t, detail.Comments)
	assert.Empty(t, detail.Comments)
}

func TestServiceRate(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()
	note := &Note{ID: noteID}

	tests := []struct {
		name    string
		score   int
		setup   func(m mocks)
		want    *RatingSummary
		wantErr error
	}{
		{
			name:  "upsert",
			score: 4,
			setup: func(m mocks) {
				m.notes.On("FindByID", mock.Anything, noteID).Return(note, nil)
				m.ratings.On("Upsert", mock.Anything, noteID, userID, 4).Return(nil)
				m.ratings.On("Stats", mock.Anything, noteID).Return(RatingStats{Average: avg(11.0 / 3.0), Count: 3}, nil)
			},
			want: &RatingSummary{AvgRating: 3.7, UserScore: 4, Count: 3},
		},
		{
			name:  "zero removes the rating",
			score: 0,
			setup: func(m mocks) {
				m.notes.On("FindByID", mock.Anything, noteID).Return(note, nil)
				m.ratings.On("Delete", mock.Anything, noteID, userID).Return(nil)
				m.ratings.On("Stats", mock.Anything, noteID).Return(RatingStats{}, nil)
			},
			want: &RatingSummary{AvgRating: 0, UserScore: 0, Count: 0},
		},
		{
			name:    "out of range",
			score:   6,
			setup:   func(mocks) {},
			wantErr: ErrInvalidScore,
		},
		{
			name:    "negative",
			score:   -1,
			setup:   func(mocks) {},
			wantErr: ErrInvalidScore,
		},
		{
			name:  "missing note",
			score: 3,
			setup: func(m mocks) {
				m.notes.On("FindByID", mock.Anything, noteID).Return(nil, ErrNoteNotFound)
			},
			wantErr: ErrNoteNotFound,
		},
		{
			name:  "store failure",
			score: 3,
			setup: func(m mocks) {
				m.notes.On("FindByID", mock.Anything, noteID).Return(note, nil)
				m.ratings.On("Upsert", mock.Anything, noteID, userID, 3).Return(errors.New(ErrDBMsg))
			},
			wantErr: ErrRateNote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, tt.setup)
			got, err := svc.Rate(context.Background(), userID, noteID, tt.score)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			m.assert(t)
		})
	}
}

func TestServiceAddComment(t *testing.T) {
	userID := bson.NewObjectID()
	noteID := bson.NewObjectID()

	t.Run("stored", func(t *testing.T) {
		svc, m := newServiceWithMocks(t, func(m mocks) {
			m.notes.On("FindByID", mock.Anything, noteID).Return(&Note{ID: noteID}, nil)
			m.comments.On("Create", mock.Anything, mockComment).Return(nil)
		})

		resp, err := svc.AddComment(context.Background(), userID, "alice", noteID, "  <i>nice</i> notes ")
		require.NoError(t, err)
		assert.Equal(t, "nice notes", resp.Comment.Text)
		assert.Equal(t, "alice", resp.Comment.Username)
		assert.Equal(t, noteID, resp.Comment.NoteID)
		m.assert(t)
	})

	t.Run("blank", func(t *testing.T) {
		svc, m := newServiceWithMocks(t, nil)
		_, err := svc.AddComment(context.Background(), userID, "alice", noteID, "<p> </p>")
		assert.ErrorIs(t, err, ErrEmptyComment)
		m.assert(t)
	})

	t.Run("missing note", func(t *testing.T) {
		svc, _ := newServiceWithMocks(t, func(m mocks) {
			m.notes.On("FindByID", mock.Anything, noteID).Return(nil, ErrNoteNotFound)
		})
		_, err := svc.AddComment(context.Background(), userID, "alice", noteID, "hi")
		assert.ErrorIs(t, err, ErrNoteNotFound)
	})
}

func TestServiceDeleteComment(t *testing.T) {
	author := bson.NewObjectID()
	owner := bson.NewObjectID()
	stranger := bson.NewObjectID()
	noteID := bson.NewObjectID()
	commentID := bson.NewObjectID()
	comment := &Comment{ID: commentID, NoteID: noteID, UserID: author}
	note := &Note{ID: noteID, UserID: owner}

	tests := []struct {
		name    string
		caller  bson.ObjectID
		setup   func(m mocks)
		wantErr error
	}{
		{
			name:   "author",
			caller: author,
			setup: func(m mocks) {
				m.comments.On("FindByID", mock.Anything, commentID).Return(comment, nil)
				m.comments.On("Delete", mock.Anything, commentID).Return(nil)
			},
		},
		{
			name:   "note owner",
			caller: owner,
			setup: func(m mocks) {
				m.comments.On("FindByID", mock.Anything, commentID).Return(comment, nil)
				m.notes.On("FindByID", mock.Anything, noteID).Return(note, nil)
				m.comments.On("Delete", mock.Anything, commentID).Return(nil)
			},
		},
		{
			name:   "stranger",
			caller: stranger,
			setup: func(m mocks) {
				m.comments.On("FindByID", mock.Anything, commentID).Return(comment, nil)
				m.notes.On("FindByID", mock.Anything, noteID).Return(note, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "missing comment",
			caller: author,
			setup: func(m mocks) {
				m.comments.On("FindByID", mock.Anything, commentID).Return(nil, ErrCommentNotFound)
			},
			wantErr: ErrCommentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newServiceWithMocks(t, tt.setup)
			err := svc.DeleteComment(context.Background(), tt.caller, commentID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestNewService_DefaultViewTracker(t *testing.T) {
	svc := NewService(Stores{}, nil, new(MockBus), silentLogger)
	first, err := svc.views.FirstView(context.Background(), bson.NewObjectID(), bson.NewObjectID())
	require.NoError(t, err)
	assert.True(t, first)
}

func TestFileType(t *testing.T) {
	tests := map[string]string{
		"":             FileTypeNone,
		"photo.JPG":    FileTypeImage,
		"clip.mov":     FileTypeVideo,
		"song.mp3":     FileTypeAudio,
		"paper.pdf":    FileTypePDF,
		"slides.pptx":  FileTypeOffice,
		"main.go":      FileTypeCode,
		"notes.md":     FileTypeCode,
		"archive.zip":  FileTypeOther,
		"no_extension": FileTypeOther,
	}
	for name, want := range tests {
		assert.Equal(t, want, FileType(name), name)
	}
}
