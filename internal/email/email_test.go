package email

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DefaultsToLog(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	_, ok := p.(*LogProvider)
	assert.True(t, ok)
}

func TestNewProvider_ValidatesConfig(t *testing.T) {
	_, err := NewProvider(Config{Provider: "smtp"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "mailjet", FromEmail: "a@b.c"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "pigeon"})
	assert.Error(t, err)

	p, err := NewProvider(Config{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 1025, FromEmail: "noreply@estate.test"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPProvider{}, p)
}

func TestLogProvider_SendTemplate(t *testing.T) {
	tm, err := NewDefaultTemplateManager("")
	require.NoError(t, err)
	p := NewLogProvider(Config{}, tm)

	err = p.SendTemplate(context.Background(), []string{"agent@estate.test"}, "Approved",
		TemplatePropertyApproved, TemplateData{"Name": "Ann", "Title": "Sea View Villa"})
	require.NoError(t, err)

	sent := p.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"agent@estate.test"}, sent[0].To)
	assert.Contains(t, sent[0].HTMLBody, "Sea View Villa")
	assert.Contains(t, sent[0].Body, "Hello Ann,")
	assert.NotContains(t, sent[0].Body, "<strong>")
}

func TestTemplateManager_DirectoryOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, TemplateWelcome+".html"), []byte("Hi {{.Name}} from file"), 0o644))

	tm, err := NewDefaultTemplateManager(dir)
	require.NoError(t, err)

	out, err := tm.Render(TemplateWelcome, TemplateData{"Name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Hi Bob from file", out)

	_, err = tm.Render("missing", nil)
	assert.Error(t, err)
}
