package routes

import (
	"net/http"
)

// FormHandler serves a small page for uploading an image by hand.
func (s *Server) FormHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(uploadForm))
}

const uploadForm = `<!doctype html>
<html lang="en">
	<head>
		<meta charset="UTF-8" />
		<meta name="viewport" content="width=device-width, initial-scale=1.0" />
		<title>Yo Chan</title>
		<style>
			:root {
				--color-primary: hsl(233, 80%, 40%);
				--color-primary-soft: hsl(233, 75%, 92%);
				--color-bg: hsl(233, 20%, 92%);
				--color-text: hsl(233, 65%, 30%);
				--color-muted: hsl(233, 20%, 40%);
				--color-border: hsl(233, 30%, 80%);
				--radius: 0.5rem;
			}
			html, body {
				height: 100%;
				margin: 0;
				display: grid;
				place-items: center;
				background-color: var(--color-bg);
				font-family: 'Courier New', Courier, monospace;
				text-align: center;
				color: var(--color-primary);
			}
			main {
				max-width: 480px;
				padding: 2rem;
				box-shadow: 0 10px 40px rgba(3, 8, 20, 0.08);
				border-radius: 1rem;
				background: #fff;
			}
			form { display: grid; gap: 1rem; }
			label {
				display: grid;
				grid-template-columns: 9rem minmax(0, 1fr);
				align-items: center;
				gap: 0.75rem;
				text-align: right;
				font-size: 0.9rem;
				font-weight: bold;
				color: var(--color-text);
			}
			input, button {
				font: inherit;
				padding: 0.5rem 0.75rem;
				border-radius: var(--radius);
				border: 1px solid var(--color-border);
			}
			button {
				cursor: pointer;
				background: var(--color-primary);
				color: white;
				border: none;
				justify-self: end;
			}
			fieldset {
				border: 1px dashed var(--color-border);
				border-radius: 0.75rem;
				padding: 1rem;
				display: grid;
				gap: 0.75rem;
			}
			.small { font-size: 0.85rem; color: var(--color-muted); }
		</style>
	</head>
	<body>
		<main>
			<h1>Yo Chan is ready to gyu!</h1>
			<p class="small">Upload an image, set a purpose label, and tweak the output.</p>
			<form method="POST" action="/" data-base-action="/" enctype="multipart/form-data" target="_blank">
				<label>
					<span>API key</span>
					<input type="text" name="key" placeholder="your-secret-key" required />
				</label>
				<label>
					<span>Select image</span>
					<input type="file" name="file" accept="image/*" required />
				</label>
				<label>
					<span>Purpose</span>
					<input type="text" name="purpose" value="_misc" pattern="^[a-zA-Z0-9_-]+$" required />
				</label>
				<fieldset>
					<legend>Filters (optional)</legend>
					<label>
						<span>Thumbnail size (px)</span>
						<input type="number" name="thumbnail" min="1" max="10000" placeholder="e.g. 512" />
					</label>
					<label>
						<span>JPEG quality (1-100)</span>
						<input type="number" name="asJpeg" min="1" max="100" placeholder="80" />
					</label>
					<label>
						<span>WEBP quality (1-100)</span>
						<input type="number" name="asWebp" min="1" max="100" placeholder="90" />
					</label>
				</fieldset>
				<button type="submit">Upload image</button>
			</form>
			<script>
				const form = document.querySelector("form");
				const keyInput = form.querySelector('input[name="key"]');
				const purposeInput = form.querySelector('input[name="purpose"]');
				const actionBase = form.dataset.baseAction || "/";
				form.addEventListener("submit", (event) => {
					const key = keyInput.value.trim();
					if (!key) {
						event.preventDefault();
						keyInput.focus();
						return;
					}
					const params = new URLSearchParams();
					params.set("key", key);
					params.set("purpose", purposeInput.value.trim() || "_misc");
					for (const name of ["thumbnail", "asJpeg", "asWebp"]) {
						const value = form.querySelector('[name="' + name + '"]').value.trim();
						if (value) params.set(name, value);
					}
					form.action = actionBase + "?" + params.toString();
				});
			</script>
		</main>
	</body>
</html>
`
