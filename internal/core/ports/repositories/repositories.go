package repositories

// RepositoryProvider holds instances of all the repositories used by the
// service layer. It is populated once at startup and handed to the service
// container.
type RepositoryProvider struct {
	AccountRepo    AccountRepositoryWithTx
	EntryRepo      EntryRepositoryWithTx
	FoundationRepo FoundationRepositoryWithTx
	UserRepo       UserRepositoryWithTx
}
