// Package seed generates a synthetic blog dataset and bulk-inserts it.
package seed

import (
    "context"
    "fmt"
    "math/rand"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/jmoiron/sqlx"

    "github.com/iliyamo/postboard/internal/model"
    "github.com/iliyamo/postboard/internal/utils"
)

// Options controls the size and shape of a generated dataset.
type Options struct {
    Users        int
    PostsPerUser int
    MaxComments  int     // upper bound of comments on a commented post
    Commentless  float64 // fraction of posts that get no comments
    WithAddress  float64 // fraction of users that get an address
    Password     string  // plain password shared by every seeded user
    BcryptCost   int
    ContentSize  int
    AdminEmail   string // when set, the first user is an ADMIN with this email
}

type addressRow struct {
    ID           string `db:"id"`
    Country      string `db:"country"`
    City         string `db:"city"`
    Street       string `db:"street"`
    StreetNumber string `db:"street_number"`
    PostalCode   string `db:"postal_code"`
}

type userRow struct {
    ID           string     `db:"id"`
    Role         string     `db:"role"`
    FirstName    string     `db:"first_name"`
    LastName     string     `db:"last_name"`
    EmailAddress string     `db:"email_address"`
    Password     string     `db:"password"`
    DateOfBirth  model.Date `db:"date_of_birth"`
    Address      *string    `db:"address"`
}

type postRow struct {
    ID        string    `db:"id"`
    Title     string    `db:"title"`
    Content   string    `db:"content"`
    CreatedAt time.Time `db:"created_at"`
    AppUserID string    `db:"app_user_id"`
}

type commentRow struct {
    ID        string    `db:"id"`
    Content   string    `db:"content"`
    CreatedAt time.Time `db:"created_at"`
    AppUserID string    `db:"app_user_id"`
    PostID    string    `db:"post_id"`
}

// Dataset is one generated batch of rows, in foreign-key order.
type Dataset struct {
    Addresses []addressRow
    Users     []userRow
    Posts     []postRow
    Comments  []commentRow
}

var (
    firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Edsger", "Frances", "Dennis", "Margaret", "Alan"}
    lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Dijkstra", "Allen", "Ritchie", "Hamilton", "Turing"}
    countries  = []string{"Serbia", "Germany", "Norway", "Italy", "Canada"}
    cities     = []string{"Belgrade", "Berlin", "Oslo", "Rome", "Toronto"}
)

// Generate builds a dataset from opts using r for every random choice.  The
// password is hashed once and reused for all users.
func Generate(r *rand.Rand, opts Options, now time.Time) (Dataset, error) {
    hash, err := utils.HashPassword(opts.Password, opts.BcryptCost)
    if err != nil {
        return Dataset{}, fmt.Errorf("hash password: %w", err)
    }
    var ds Dataset
    yearAgo := now.Add(-365 * 24 * time.Hour)
    randTime := func() time.Time {
        return yearAgo.Add(time.Duration(r.Int63n(int64(now.Sub(yearAgo))))).Truncate(time.Millisecond)
    }
    text := func(n int) string {
        var b strings.Builder
        for i := 0; i < n; i++ {
            if i > 0 && r.Intn(6) == 0 {
                b.WriteByte(' ')
                continue
            }
            b.WriteByte(byte('a' + r.Intn(26)))
        }
        return b.String()
    }

    for i := 0; i < opts.Users; i++ {
        u := userRow{
            ID:           uuid.NewString(),
            Role:         "USER",
            FirstName:    firstNames[r.Intn(len(firstNames))],
            LastName:     lastNames[r.Intn(len(lastNames))],
            EmailAddress: fmt.Sprintf("user%d@example.com", i+1),
            Password:     hash,
            DateOfBirth:  model.NewDate(1960+r.Intn(45), time.Month(1+r.Intn(12)), 1+r.Intn(28)),
        }
        if i == 0 && opts.AdminEmail != "" {
            u.Role = "ADMIN"
            u.EmailAddress = opts.AdminEmail
        }
        if r.Float64() < opts.WithAddress {
            k := r.Intn(len(countries))
            a := addressRow{
                ID:           uuid.NewString(),
                Country:      countries[k],
                City:         cities[k],
                Street:       lastNames[r.Intn(len(lastNames))] + " Street",
                StreetNumber: fmt.Sprint(1 + r.Intn(200)),
                PostalCode:   fmt.Sprintf("%05d", r.Intn(100000)),
            }
            ds.Addresses = append(ds.Addresses, a)
            u.Address = &a.ID
        }
        ds.Users = append(ds.Users, u)
    }

    for _, u := range ds.Users {
        for j := 0; j < opts.PostsPerUser; j++ {
            p := postRow{
                ID:        uuid.NewString(),
                Title:     text(24),
                Content:   text(opts.ContentSize),
                CreatedAt: randTime(),
                AppUserID: u.ID,
            }
            ds.Posts = append(ds.Posts, p)
            if r.Float64() < opts.Commentless || opts.MaxComments < 1 {
                continue
            }
            for k, n := 0, 1+r.Intn(opts.MaxComments); k < n; k++ {
                ds.Comments = append(ds.Comments, commentRow{
                    ID:        uuid.NewString(),
                    Content:   text(40),
                    CreatedAt: p.CreatedAt.Add(time.Duration(1+r.Intn(72)) * time.Hour),
                    AppUserID: ds.Users[r.Intn(len(ds.Users))].ID,
                    PostID:    p.ID,
                })
            }
        }
    }
    return ds, nil
}

// Insert writes ds in one transaction, batchSize rows per statement.
func Insert(ctx context.Context, db *sqlx.DB, ds Dataset, batchSize int) (err error) {
    if batchSize < 1 {
        batchSize = 500
    }
    tx, err := db.BeginTxx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        }
    }()

    if err = insertBatches(ctx, tx, `INSERT INTO address (id, country, city, street, street_number, postal_code)
        VALUES (:id, :country, :city, :street, :street_number, :postal_code)`, ds.Addresses, batchSize); err != nil {
        return fmt.Errorf("insert addresses: %w", err)
    }
    if err = insertBatches(ctx, tx, `INSERT INTO app_user (id, role, first_name, last_name, email_address, password, date_of_birth, address)
        VALUES (:id, :role, :first_name, :last_name, :email_address, :password, :date_of_birth, :address)`, ds.Users, batchSize); err != nil {
        return fmt.Errorf("insert users: %w", err)
    }
    if err = insertBatches(ctx, tx, `INSERT INTO post (id, title, content, created_at, modified_at, app_user_id)
        VALUES (:id, :title, :content, :created_at, :created_at, :app_user_id)`, ds.Posts, batchSize); err != nil {
        return fmt.Errorf("insert posts: %w", err)
    }
    if err = insertBatches(ctx, tx, `INSERT INTO comment (id, content, created_at, modified_at, app_user_id, post_id)
        VALUES (:id, :content, :created_at, :created_at, :app_user_id, :post_id)`, ds.Comments, batchSize); err != nil {
        return fmt.Errorf("insert comments: %w", err)
    }
    if err = tx.Commit(); err != nil {
        return fmt.Errorf("commit: %w", err)
    }
    return nil
}

func insertBatches[T any](ctx context.Context, tx *sqlx.Tx, query string, rows []T, size int) error {
    for start := 0; start < len(rows); start += size {
        end := min(start+size, len(rows))
        if _, err := tx.NamedExecContext(ctx, query, rows[start:end]); err != nil {
            return err
        }
    }
    return nil
}
