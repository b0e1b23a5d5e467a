// Command initdata seeds a running server with users, notes, ratings and
// comments through the public API.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	baseURL  = flag.String("url", env("API_BASE_URL", "http://localhost:8080"), "Server base URL")
	password = flag.String("pass", env("PASSWORD", "Password123"), "Password for every seeded user")
	nUsers   = flag.Int("users", envInt("USERS", 5), "How many users to create")
	nNotes   = flag.Int("n", envInt("COUNT", 20), "How many notes each user uploads")
)

var courses = []string{"MATH 201", "CS 101", "PHYS 150", "HIST 210", "BIO 120", "ECON 101"}

var extensions = []string{"pdf", "md", "txt", "docx", "pptx", "png", "py", "mp4"}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// apiError is a non-2xx answer from the server
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

type client struct {
	base string
	http *http.Client
}

type seededUser struct {
	ID       string
	Username string
	Token    string
}

func (c *client) do(method, path, token string, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return &apiError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// ensureUser signs up username, or signs in when the account already exists.
func (c *client) ensureUser(username, email, pass string) (seededUser, error) {
	var auth struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}

	err := c.do(http.MethodPost, "/api/v1/auth/sign-up", "", map[string]string{
		"username": username,
		"email":    email,
		"password": pass,
	}, &auth)

	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		err = c.do(http.MethodPost, "/api/v1/auth/sign-in", "", map[string]string{
			"email":    email,
			"password": pass,
		}, &auth)
	}
	if err != nil {
		return seededUser{}, fmt.Errorf("user %s: %w", username, err)
	}

	return seededUser{ID: auth.User.ID, Username: auth.User.Username, Token: auth.Token}, nil
}

func (c *client) createNote(token string) (string, error) {
	var resp struct {
		Note struct {
			ID string `json:"id"`
		} `json:"note"`
	}

	ext := extensions[rand.IntN(len(extensions))]
	note := map[string]any{
		"title":       truncate(gofakeit.Sentence(3), 60),
		"course":      courses[rand.IntN(len(courses))],
		"tags":        strings.Join([]string{gofakeit.Noun(), gofakeit.Noun()}, ", "),
		"description": truncate(gofakeit.Paragraph(1, 3, 20, " "), 1000),
		"file_name":   strings.ToLower(gofakeit.Word()) + "." + ext,
		"file_size":   gofakeit.Number(1<<10, 30<<20),
	}

	if err := c.do(http.MethodPost, "/api/v1/notes", token, note, &resp); err != nil {
		return "", err
	}
	return resp.Note.ID, nil
}

func (c *client) rate(token, noteID string, score int) error {
	return c.do(http.MethodPost, "/api/v1/notes/"+noteID+"/rating", token, map[string]int{"score": score}, nil)
}

func (c *client) comment(token, noteID string) error {
	text := truncate(gofakeit.Sentence(gofakeit.Number(4, 12)), 500)
	return c.do(http.MethodPost, "/api/v1/notes/"+noteID+"/comments", token, map[string]string{"text": text}, nil)
}

// seedUsername turns a fake username into one the server accepts.
func seedUsername(raw string, i int) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	suffix := "_" + strconv.Itoa(i)
	return truncate(b.String(), 15-len(suffix)) + suffix
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func run(c *client, users, notesPerUser int, pass string) error {
	var (
		seeded  []seededUser
		noteIDs []string
	)

	for i := range users {
		u, err := c.ensureUser(seedUsername(gofakeit.Username(), i), fmt.Sprintf("seed%d@example.com", i), pass)
		if err != nil {
			return err
		}
		seeded = append(seeded, u)
		fmt.Printf("• user %s ready\n", u.Username)

		for range notesPerUser {
			id, err := c.createNote(u.Token)
			if err != nil {
				return fmt.Errorf("create note for %s: %w", u.Username, err)
			}
			noteIDs = append(noteIDs, id)
		}
	}

	for _, u := range seeded {
		for _, id := range noteIDs {
			if rand.IntN(3) == 0 {
				if err := c.rate(u.Token, id, 1+rand.IntN(5)); err != nil {
					return fmt.Errorf("rate %s: %w", id, err)
				}
			}
			if rand.IntN(5) == 0 {
				if err := c.comment(u.Token, id); err != nil {
					return fmt.Errorf("comment on %s: %w", id, err)
				}
			}
		}
	}

	fmt.Printf("• %d notes across %d users\n", len(noteIDs), len(seeded))
	return nil
}

func main() {
	flag.Parse()
	gofakeit.Seed(time.Now().UnixNano())

	fmt.Printf("Seeding %s (users=%d, notes per user=%d)\n", *baseURL, *nUsers, *nNotes)

	c := &client{base: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}
	if err := run(c, *nUsers, *nNotes, *password); err != nil {
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}

	fmt.Println("✔ done")
}
