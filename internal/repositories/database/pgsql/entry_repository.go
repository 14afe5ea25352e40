package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stiftly/foundation_ledger_app/internal/apperrors"
	"github.com/stiftly/foundation_ledger_app/internal/core/domain"
	portsrepo "github.com/stiftly/foundation_ledger_app/internal/core/ports/repositories"
	"github.com/stiftly/foundation_ledger_app/internal/models"
	"github.com/stiftly/foundation_ledger_app/internal/utils/accounting"
	"github.com/stiftly/foundation_ledger_app/internal/utils/mapping"
	"github.com/stiftly/foundation_ledger_app/internal/utils/pagination"
)

type PgxEntryRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryWithTx
}

// newPgxEntryRepository creates a new repository for journal entry data.
func newPgxEntryRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryWithTx) portsrepo.EntryRepositoryWithTx {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryWithTx
var _ portsrepo.EntryRepositoryWithTx = (*PgxEntryRepository)(nil)

// nextSequenceInTx determines the next entry number sequence for a foundation
// and year, inside the caller's transaction. It is max-based rather than
// count-based, so numbering survives deleted drafts without reusing numbers.
func (r *PgxEntryRepository) nextSequenceInTx(ctx context.Context, tx pgx.Tx, foundationID string, year int) (int64, error) {
	// The sequence is the trailing six digits of the entry number.
	query := `
		SELECT COALESCE(MAX(CAST(RIGHT(entry_number, 6) AS INTEGER)), 0)
		FROM journal_entries
		WHERE foundation_id = $1 AND entry_number LIKE $2;
	`
	pattern := fmt.Sprintf("%s-%d-%%", accounting.EntryNumberPrefix, year)

	var maxSeq int64
	if err := tx.QueryRow(ctx, query, foundationID, pattern).Scan(&maxSeq); err != nil {
		return 0, apperrors.NewPersistenceError("failed to determine next entry sequence for foundation "+foundationID, err)
	}
	return maxSeq + 1, nil
}

// insertHeaderInTx inserts a journal entry header row.
func (r *PgxEntryRepository) insertHeaderInTx(ctx context.Context, tx pgx.Tx, modelEntry models.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (
			entry_id, foundation_id, entry_number, entry_date, description, reference,
			total_debit, total_credit, status, posted_by, posted_at,
			original_entry_id, reversing_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, query,
		modelEntry.EntryID,
		modelEntry.FoundationID,
		modelEntry.EntryNumber,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.Reference,
		modelEntry.TotalDebit,
		modelEntry.TotalCredit,
		modelEntry.Status,
		modelEntry.PostedBy,
		modelEntry.PostedAt,
		modelEntry.OriginalEntryID,
		modelEntry.ReversingEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			// A concurrent writer took the same entry number. The caller
			// retries with a freshly computed sequence.
			return fmt.Errorf("entry number %s already taken: %w", modelEntry.EntryNumber, apperrors.ErrNumberingConflict)
		}
		return apperrors.NewPersistenceError("failed to insert entry "+modelEntry.EntryID, err)
	}
	return nil
}

// insertLinesInTx batch-inserts the lines of an entry. If any line fails, the
// transaction is already aborted and the caller's rollback discards the header
// with it, so a header without lines can never be observed.
func (r *PgxEntryRepository) insertLinesInTx(ctx context.Context, tx pgx.Tx, entryID string, lines []models.JournalEntryLine) error {
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_entry_lines (
			line_id, entry_id, account_id, description, debit_amount, credit_amount, line_order,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, line := range lines {
		batch.Queue(lineQuery,
			line.LineID,
			line.EntryID,
			line.AccountID,
			line.Description,
			line.DebitAmount,
			line.CreditAmount,
			line.LineOrder,
			line.CreatedAt,
			line.CreatedBy,
			line.LastUpdatedAt,
			line.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewPersistenceError("failed to insert lines for entry "+entryID, err)
	}
	return nil
}

// CreateEntry persists a draft entry header and its lines atomically,
// allocating the entry number inside the same transaction.
func (r *PgxEntryRepository) CreateEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx) // No-op once committed

	seq, err := r.nextSequenceInTx(ctx, tx, entry.FoundationID, entry.EntryDate.Year())
	if err != nil {
		return nil, err
	}
	entry.EntryNumber = accounting.FormatEntryNumber(accounting.EntryNumberPrefix, entry.EntryDate.Year(), seq)

	modelEntry := mapping.ToModelEntry(entry)
	if err := r.insertHeaderInTx(ctx, tx, modelEntry); err != nil {
		return nil, err
	}

	modelLines := make([]models.JournalEntryLine, len(lines))
	for i, line := range lines {
		line.EntryID = entry.EntryID
		modelLines[i] = mapping.ToModelEntryLine(line)
	}
	if err := r.insertLinesInTx(ctx, tx, entry.EntryID, modelLines); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	entry.Lines = lines
	return &entry, nil
}

// MarkEntryPosted transitions a draft entry to posted and applies the balance
// deltas, all within one transaction. The status transition is a
// compare-and-set: a second post of the same entry affects zero rows and fails
// with ErrConflict, leaving balances untouched.
func (r *PgxEntryRepository) MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.markPostedInTx(ctx, tx, entryID, userID, now); err != nil {
		return err
	}

	if err := r.applyBalanceChangesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// markPostedInTx performs the DRAFT -> POSTED compare-and-set.
func (r *PgxEntryRepository) markPostedInTx(ctx context.Context, tx pgx.Tx, entryID string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = $2,
		    posted_by = $3,
		    posted_at = $4,
		    last_updated_at = $4,
		    last_updated_by = $3
		WHERE entry_id = $1 AND status = $5;
	`
	cmdTag, err := tx.Exec(ctx, query, entryID, models.Posted, userID, now, models.Draft)
	if err != nil {
		return apperrors.NewPersistenceError("failed to mark entry "+entryID+" posted", err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Either the entry does not exist or it already left draft status.
		var status models.EntryStatus
		err := tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return apperrors.NewPersistenceError("failed to check status of entry "+entryID, err)
		}
		return fmt.Errorf("entry %s is in status %s, not %s: %w", entryID, status, models.Draft, apperrors.ErrConflict)
	}
	return nil
}

// applyBalanceChangesInTx locks the affected accounts and applies the signed
// deltas through the account repository.
func (r *PgxEntryRepository) applyBalanceChangesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewPersistenceError("failed to lock accounts for update", err)
	}

	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return apperrors.NewPersistenceError("failed to update account balances", err)
	}
	return nil
}

// CreateReversal persists the reversing entry, marks the original reversed,
// links the two, and applies the compensating balance deltas in a single
// transaction.
func (r *PgxEntryRepository) CreateReversal(ctx context.Context, originalEntryID string, reversal domain.JournalEntry, lines []domain.JournalEntryLine, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) (*domain.JournalEntry, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	seq, err := r.nextSequenceInTx(ctx, tx, reversal.FoundationID, reversal.EntryDate.Year())
	if err != nil {
		return nil, err
	}
	reversal.EntryNumber = accounting.FormatEntryNumber(accounting.EntryNumberPrefix, reversal.EntryDate.Year(), seq)

	modelReversal := mapping.ToModelEntry(reversal)
	if err := r.insertHeaderInTx(ctx, tx, modelReversal); err != nil {
		return nil, err
	}

	modelLines := make([]models.JournalEntryLine, len(lines))
	for i, line := range lines {
		line.EntryID = reversal.EntryID
		modelLines[i] = mapping.ToModelEntryLine(line)
	}
	if err := r.insertLinesInTx(ctx, tx, reversal.EntryID, modelLines); err != nil {
		return nil, err
	}

	// POSTED -> REVERSED compare-and-set on the original, recording the link.
	casQuery := `
		UPDATE journal_entries
		SET status = $2,
		    reversing_entry_id = $3,
		    last_updated_at = $4,
		    last_updated_by = $5
		WHERE entry_id = $1 AND status = $6;
	`
	cmdTag, err := tx.Exec(ctx, casQuery, originalEntryID, models.Reversed, reversal.EntryID, now, userID, models.Posted)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to mark entry "+originalEntryID+" reversed", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, fmt.Errorf("entry %s is not in posted status: %w", originalEntryID, apperrors.ErrConflict)
	}

	if err := r.applyBalanceChangesInTx(ctx, tx, balanceChanges, userID, now); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	reversal.Lines = lines
	return &reversal, nil
}

const entryColumns = `entry_id, foundation_id, entry_number, entry_date, description, reference,
		       total_debit, total_credit, status, posted_by, posted_at,
		       original_entry_id, reversing_entry_id,
		       created_at, created_by, last_updated_at, last_updated_by`

// scanEntry scans a journal entry row into its storage model.
func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	var reference, postedBy, originalID, reversingID sql.NullString
	var postedAt sql.NullTime

	err := row.Scan(
		&m.EntryID,
		&m.FoundationID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&reference,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Status,
		&postedBy,
		&postedAt,
		&originalID,
		&reversingID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return m, err
	}

	if reference.Valid {
		m.Reference = &reference.String
	}
	if postedBy.Valid {
		m.PostedBy = &postedBy.String
	}
	if postedAt.Valid {
		m.PostedAt = &postedAt.Time
	}
	if originalID.Valid {
		m.OriginalEntryID = &originalID.String
	}
	if reversingID.Valid {
		m.ReversingEntryID = &reversingID.String
	}
	return m, nil
}

// FindEntryByID retrieves a journal entry header by its ID.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id = $1;
	`
	modelEntry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewPersistenceError("failed to find entry by ID "+entryID, err)
	}

	domainEntry := mapping.ToDomainEntry(modelEntry)
	return &domainEntry, nil
}

// FindLinesByEntryID retrieves all lines of a single entry ordered by line order.
func (r *PgxEntryRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT line_id, entry_id, account_id, description, debit_amount, credit_amount, line_order,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_order;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var l models.JournalEntryLine
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.Description,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.LineOrder,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainEntryLineSlice(lines), nil
}

// FindLinesByEntryIDs retrieves all lines for a given list of entry IDs.
// It returns a map where keys are entry IDs and values are slices of lines.
func (r *PgxEntryRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalEntryLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalEntryLine{}, nil
	}

	query := `
		SELECT line_id, entry_id, account_id, description, debit_amount, credit_amount, line_order,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entry_lines
		WHERE entry_id = ANY($1)
		ORDER BY entry_id, line_order;
	`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to query lines for entry IDs", err)
	}
	defer rows.Close()

	linesMap := make(map[string][]domain.JournalEntryLine)
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.Description,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.LineOrder,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan line row during batch fetch", err)
		}
		domainLine := mapping.ToDomainEntryLine(l)
		linesMap[domainLine.EntryID] = append(linesMap[domainLine.EntryID], domainLine)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("error iterating line rows during batch fetch", err)
	}

	// Ensure even entries with no lines have an entry (empty slice)
	for _, eid := range entryIDs {
		if _, exists := linesMap[eid]; !exists {
			linesMap[eid] = []domain.JournalEntryLine{}
		}
	}

	return linesMap, nil
}

// ListEntriesByFoundation retrieves a paginated list of entries for a foundation
// using token-based pagination. It returns the entries, a token for the next
// page (if any), and an error.
func (r *PgxEntryRepository) ListEntriesByFoundation(ctx context.Context, foundationID string, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + entryColumns + `
		FROM journal_entries
	`
	filterClause := `WHERE foundation_id = $1`
	if !includeReversals {
		filterClause += ` AND status != 'REVERSED' AND reversing_entry_id IS NULL AND original_entry_id IS NULL`
	}

	// Ordering must be stable: entry_date DESC with created_at as tie-breaker.
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{foundationID}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (entry_date, created_at) < ($2, $3)`
		args = append(args, lastDate, lastCreatedAt)

		query := baseQuery + " " + filterClause + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + filterClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to query entries for foundation "+foundationID, err)
	}
	defer rows.Close()

	modelEntries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewPersistenceError("failed to scan entry row for foundation "+foundationID, scanErr)
		}
		modelEntries = append(modelEntries, m)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewPersistenceError("error iterating entry rows for foundation "+foundationID, err)
	}

	var nextTokenVal *string
	results := modelEntries
	if len(modelEntries) > limit {
		lastEntry := modelEntries[limit-1]
		newToken := pagination.EncodeToken(lastEntry.EntryDate, lastEntry.CreatedAt)
		nextTokenVal = &newToken
		results = modelEntries[:limit]
	}

	domainEntries := make([]domain.JournalEntry, len(results))
	for i, m := range results {
		domainEntries[i] = mapping.ToDomainEntry(m)
	}

	return domainEntries, nextTokenVal, nil
}

// ListLinesByAccount retrieves a paginated list of posted lines for a specific
// account using token-based pagination.
func (r *PgxEntryRepository) ListLinesByAccount(ctx context.Context, foundationID string, accountID string, limit int, nextToken *string) ([]domain.JournalEntryLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.entry_id, l.account_id, l.description, l.debit_amount, l.credit_amount, l.line_order,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_entry_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.foundation_id = $2 AND e.status = 'POSTED' AND e.original_entry_id IS NULL
	`
	orderByClause := `ORDER BY e.entry_date DESC, l.created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{accountID, foundationID}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (e.entry_date, l.created_at) < ($3, $4)`
		args = append(args, lastEntryDate, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewPersistenceError("failed to query lines for account "+accountID+" in foundation "+foundationID, err)
	}
	defer rows.Close()

	modelLines := make([]models.JournalEntryLine, 0, fetchLimit)
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountID,
			&l.Description,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.LineOrder,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
			&l.EntryDate,
		); err != nil {
			return nil, nil, apperrors.NewPersistenceError("failed to scan line row for account "+accountID, err)
		}
		modelLines = append(modelLines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewPersistenceError("error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	results := modelLines
	if len(modelLines) > limit {
		lastLine := modelLines[limit-1]
		newToken := pagination.EncodeToken(lastLine.EntryDate, lastLine.CreatedAt)
		nextTokenVal = &newToken
		results = modelLines[:limit]
	}

	return mapping.ToDomainEntryLineSlice(results), nextTokenVal, nil
}
