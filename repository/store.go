package repository

// Store bundles the repositories of one storage backend.
type Store struct {
	Users       UserRepository
	Credentials CredentialRepository
	Clients     ClientRepository
	Tasks       TaskRepository
	Comments    CommentRepository
}
