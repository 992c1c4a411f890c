package client

// CredentialsProvider supplies an access key/secret pair to a producer
// session. Providers may be shared across sessions.
type CredentialsProvider interface {
	Credentials() (accessKey, accessSecret string)
}

// StaticCredentialsProvider returns a fixed access key/secret pair. An
// empty pair denotes anonymous access.
type StaticCredentialsProvider struct {
	accessKey    string
	accessSecret string
}

// NewStaticCredentialsProvider returns a provider holding the given pair.
func NewStaticCredentialsProvider(accessKey, accessSecret string) *StaticCredentialsProvider {
	return &StaticCredentialsProvider{accessKey: accessKey, accessSecret: accessSecret}
}

// Credentials implements CredentialsProvider.
func (p *StaticCredentialsProvider) Credentials() (string, string) {
	return p.accessKey, p.accessSecret
}
