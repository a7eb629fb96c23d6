package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("<div class=\"job\">Engineer</div>"))
	assert.True(t, LooksLikeHTML("<P>text</P>"))
	assert.False(t, LooksLikeHTML("Senior Engineer\nResponsibilities:"))
	assert.False(t, LooksLikeHTML("Use C++ <templates> daily"))
}

func TestHTMLToText_ListsBecomeBullets(t *testing.T) {
	doc := `<!DOCTYPE html>
<html>
<head><style>.x{color:red}</style></head>
<body>
<nav>Home | Careers</nav>
<h1>Senior Software Engineer</h1>
<h2>Responsibilities:</h2>
<ul>
  <li>Design and build   scalable services</li>
  <li>Mentor <b>junior</b> engineers</li>
</ul>
<p>About Us</p>
<script>track()</script>
</body>
</html>`

	text, err := HTMLToText(doc)
	require.NoError(t, err)

	assert.Equal(t, "Senior Software Engineer\nResponsibilities:\n• Design and build scalable services\n• Mentor junior engineers\nAbout Us", text)
}

func TestHTMLToText_BreaksAndParagraphs(t *testing.T) {
	text, err := HTMLToText("<p>Location: Remote<br>Company: Acme</p><div>Apply now</div>")
	require.NoError(t, err)
	assert.Equal(t, "Location: Remote\nCompany: Acme\nApply now", text)
}

func TestHTMLToText_Fragment(t *testing.T) {
	text, err := HTMLToText("<li>One</li><li>Two</li>")
	require.NoError(t, err)
	assert.Equal(t, "• One\n• Two", text)
}
