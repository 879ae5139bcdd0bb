// Package archive provides SQLite-based persistence for chat transcripts.
// The database is opened lazily; if opening or writing fails, the archive
// falls back to in-memory storage so chat flow is never blocked.
package archive

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Entry is one archived message row.
type Entry struct {
	ID        int64
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

// Archive appends every conversation message to a transcript log. Unlike the
// session log it survives resets; it is an audit record, not conversation
// state.
type Archive struct {
	path string

	once    sync.Once
	db      *sql.DB
	initErr error

	mu  sync.Mutex
	mem []Entry
}

// Open prepares an archive backed by the SQLite file at path. The database
// itself is opened on first use.
func Open(path string) *Archive {
	return &Archive{path: path}
}

func (a *Archive) init() {
	db, err := sql.Open("sqlite", "file:"+a.path+"?_busy_timeout=10000")
	if err != nil {
		a.initErr = err
		log.Printf("archive: sqlite open failed, using in-memory transcripts: %v", err)
		return
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS transcripts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		role TEXT,
		content TEXT,
		created_at DATETIME
	);`); err != nil {
		a.initErr = err
		log.Printf("archive: table creation failed, using in-memory transcripts: %v", err)
		return
	}
	a.db = db
}

// Save appends a message to the transcript. Failures are logged, never
// surfaced: archiving must not break the chat flow.
func (a *Archive) Save(sessionID, role, content string) {
	a.once.Do(a.init)

	e := Entry{SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now().UTC()}

	if a.initErr == nil && a.db != nil {
		_, err := a.db.Exec(
			`INSERT INTO transcripts (session_id, role, content, created_at) VALUES (?,?,?,?);`,
			e.SessionID, e.Role, e.Content, e.CreatedAt,
		)
		if err == nil {
			return
		}
		log.Printf("archive: insert failed, falling back to memory: %v", err)
	}

	a.mu.Lock()
	a.mem = append(a.mem, e)
	a.mu.Unlock()
}

// List returns all archived messages of a session in chronological order.
func (a *Archive) List(sessionID string) []Entry {
	a.once.Do(a.init)

	if a.initErr == nil && a.db != nil {
		rows, err := a.db.Query(
			`SELECT id, session_id, role, content, created_at FROM transcripts WHERE session_id = ? ORDER BY id ASC;`,
			sessionID,
		)
		if err == nil {
			defer rows.Close()
			var out []Entry
			for rows.Next() {
				var e Entry
				if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.CreatedAt); err == nil {
					out = append(out, e)
				}
			}
			return out
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Entry
	for _, e := range a.mem {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out
}

// Close releases the underlying database, if one was opened.
func (a *Archive) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
