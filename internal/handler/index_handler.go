package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Upload Business Card CSV</title>
<style>
body { font-family: system-ui, sans-serif; min-height: 100vh; margin: 0; display: flex; flex-direction: column; align-items: center; justify-content: center; gap: 1rem; }
#drop { border: 1px dotted #d1d5db; border-radius: .5rem; height: 40vh; width: 58%; display: flex; align-items: center; justify-content: center; cursor: pointer; }
button { padding: .5rem 1rem; background: #2563eb; color: #fff; border: 0; border-radius: .25rem; }
button:disabled { background: #9ca3af; }
</style>
</head>
<body>
<h1>Upload Business Card CSV</h1>
<div id="drop"><span id="label">Click here to upload csv file</span></div>
<input type="file" id="input-csv" accept=".csv" hidden>
<button id="go">Extract Company &amp; Email</button>
<p id="msg"></p>
<script>
const input = document.getElementById('input-csv');
const label = document.getElementById('label');
const msg = document.getElementById('msg');
const btn = document.getElementById('go');
document.getElementById('drop').onclick = () => input.click();
input.onchange = () => { label.textContent = input.files.length ? input.files[0].name : 'Click here to upload csv file'; };
btn.onclick = async () => {
  if (!input.files.length) { msg.textContent = 'Please select a CSV file first.'; return; }
  btn.disabled = true; btn.textContent = 'Processing...'; msg.textContent = 'Processing...';
  const form = new FormData();
  form.append('file', input.files[0]);
  try {
    const res = await fetch('/api/extract', { method: 'POST', body: form });
    if (!res.ok) throw new Error('Failed to process file.');
    const url = URL.createObjectURL(await res.blob());
    const a = document.createElement('a');
    a.href = url; a.download = 'enriched.csv';
    document.body.appendChild(a); a.click(); a.remove();
    URL.revokeObjectURL(url);
    msg.textContent = 'Done! Downloading enriched file...';
  } catch (err) {
    msg.textContent = 'Error: ' + err.message;
  } finally {
    btn.disabled = false; btn.textContent = 'Extract Company & Email';
  }
};
</script>
</body>
</html>
`

// Index handles GET / with the upload form.
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
}
