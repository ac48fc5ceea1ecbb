package auth

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Login renders the sign-in page shown when no valid session token is
// presented. Tokens are issued by the backend's identity provider; the form
// stores one in the session cookie the auth middleware reads.
func Login() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"/><title>Sign in</title></head>
<body class="flex min-h-screen items-center justify-center bg-slate-50">
<main data-login-page class="w-full max-w-sm space-y-4 rounded-lg bg-white p-6 shadow">
<h1 class="text-lg font-semibold text-slate-900">Sign in</h1>
<p class="text-sm text-slate-500">Paste an access token to continue.</p>
<form method="post" action="login" class="space-y-3">
<input type="password" name="token" placeholder="Access token" required class="w-full rounded-md border border-slate-300 px-3 py-2 text-sm"/>
<button type="submit" class="w-full rounded-md bg-slate-900 px-3 py-2 text-sm font-medium text-white">Continue</button>
</form>
</main>
</body>
</html>`)
		return err
	})
}
