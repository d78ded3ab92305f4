// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"html"
	"strings"

	"github.com/jeranaias/rigchat/internal/config"
)

// renderPage fills the embedded chat page with config values. The page is
// rendered once at server construction; title, about, and model are
// HTML-escaped here so the template itself never has to care.
func renderPage(cfg *config.Config, model string) []byte {
	themeClass := ""
	if strings.EqualFold(cfg.UI.Theme, "light") {
		themeClass = "light"
	}

	r := strings.NewReplacer(
		"{{TITLE}}", html.EscapeString(cfg.UI.Title),
		"{{ABOUT}}", html.EscapeString(cfg.UI.About),
		"{{MODEL}}", html.EscapeString(model),
		"{{THEME_CLASS}}", themeClass,
		"{{VERSION}}", Version,
	)
	return []byte(r.Replace(pageHTML))
}

// pageHTML is the whole chat page: markup, styles, and the SSE reader.
// Palette matches the transcript export so saved conversations look like
// the app they came from.
const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{TITLE}}</title>
<style>
:root {
  --bg: #1a1b26;
  --bg-panel: #24283b;
  --bg-input: #1f2335;
  --fg: #c0caf5;
  --fg-muted: #565f89;
  --border: #3b4261;
  --accent-user: #7aa2f7;
  --accent-assistant: #9ece6a;
  --accent-error: #f7768e;
  --btn-bg: #2f3549;
  --btn-fg: #c0caf5;
}
body.light {
  --bg: #ffffff;
  --bg-panel: #f6f8fa;
  --bg-input: #ffffff;
  --fg: #1f2328;
  --fg-muted: #656d76;
  --border: #d1d9e0;
  --accent-user: #0969da;
  --accent-assistant: #1a7f37;
  --accent-error: #cf222e;
  --btn-bg: #eaeef2;
  --btn-fg: #1f2328;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  background: var(--bg);
  color: var(--fg);
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  height: 100vh;
}
.app { display: flex; height: 100vh; }

.sidebar {
  width: 260px;
  flex-shrink: 0;
  background: var(--bg-panel);
  border-right: 1px solid var(--border);
  padding: 16px;
  display: flex;
  flex-direction: column;
  gap: 16px;
  overflow-y: auto;
}
.brand { font-size: 1.2em; font-weight: 700; }
.panel h2 { margin: 0 0 6px; font-size: 0.8em; text-transform: uppercase; letter-spacing: 0.05em; color: var(--fg-muted); }
.panel p { margin: 0 0 8px; font-size: 0.88em; line-height: 1.5; }
.panel .model code { background: var(--bg-input); border: 1px solid var(--border); border-radius: 4px; padding: 1px 5px; font-size: 0.9em; }
#upload-list { list-style: none; margin: 8px 0 0; padding: 0; font-size: 0.82em; color: var(--fg-muted); }
#upload-list li { padding: 3px 0; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
.sidebar-actions { display: flex; flex-direction: column; gap: 8px; margin-top: auto; }
.sidebar footer { font-size: 0.75em; color: var(--fg-muted); }

.btn {
  display: inline-block;
  background: var(--btn-bg);
  color: var(--btn-fg);
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 7px 12px;
  font-size: 0.85em;
  cursor: pointer;
  text-align: center;
  text-decoration: none;
}
.btn:hover { border-color: var(--fg-muted); }
.btn.primary { background: var(--accent-user); color: var(--bg); border-color: var(--accent-user); font-weight: 600; }
.btn.danger { color: var(--accent-error); }
.btn:disabled { opacity: 0.5; cursor: default; }

.chat { flex: 1; display: flex; flex-direction: column; min-width: 0; }
.chat-header {
  display: flex;
  justify-content: space-between;
  align-items: center;
  padding: 12px 20px;
  border-bottom: 1px solid var(--border);
}
.chat-header h1 { margin: 0; font-size: 1.05em; }

.messages { flex: 1; overflow-y: auto; padding: 20px; }
.message { margin-bottom: 14px; max-width: 76%; }
.message.user { margin-left: auto; }
.message .who { font-size: 0.72em; color: var(--fg-muted); margin-bottom: 3px; }
.message.user .who { text-align: right; }
.bubble {
  background: var(--bg-panel);
  border: 1px solid var(--border);
  border-radius: 10px;
  padding: 10px 14px;
  white-space: pre-wrap;
  word-wrap: break-word;
  line-height: 1.5;
  font-size: 0.92em;
}
.message.user .bubble { border-left: 3px solid var(--accent-user); }
.message.assistant .bubble { border-left: 3px solid var(--accent-assistant); }
.bubble.error { border-left-color: var(--accent-error); color: var(--accent-error); }

.composer {
  display: flex;
  gap: 10px;
  padding: 14px 20px;
  border-top: 1px solid var(--border);
}
#prompt {
  flex: 1;
  background: var(--bg-input);
  color: var(--fg);
  border: 1px solid var(--border);
  border-radius: 6px;
  padding: 10px 12px;
  font-size: 0.92em;
  outline: none;
}
#prompt:focus { border-color: var(--accent-user); }

.toast {
  position: fixed;
  bottom: 24px;
  left: 50%;
  transform: translateX(-50%);
  background: var(--bg-panel);
  border: 1px solid var(--border);
  border-radius: 8px;
  padding: 10px 18px;
  font-size: 0.88em;
  box-shadow: 0 4px 16px rgba(0,0,0,0.3);
}
</style>
</head>
<body class="{{THEME_CLASS}}">
<div class="app">
  <aside class="sidebar">
    <div class="brand">{{TITLE}}</div>
    <section class="panel about">
      <h2>About</h2>
      <p>{{ABOUT}}</p>
      <p class="model">Model: <code>{{MODEL}}</code></p>
    </section>
    <section class="panel">
      <h2>Attach a file</h2>
      <input type="file" id="file-input" accept=".txt,.pdf,.docx" hidden>
      <button id="upload-btn" class="btn">Upload file</button>
      <ul id="upload-list"></ul>
    </section>
    <div class="sidebar-actions">
      <a class="btn" href="/api/export">Export conversation</a>
      <button id="theme-btn" class="btn">Toggle theme</button>
    </div>
    <footer>rigchat {{VERSION}}</footer>
  </aside>
  <main class="chat">
    <header class="chat-header">
      <h1>{{TITLE}}</h1>
      <button id="clear-btn" class="btn danger">Clear</button>
    </header>
    <div id="messages" class="messages"></div>
    <form id="composer" class="composer">
      <input id="prompt" type="text" placeholder="Type a message and press Enter" autocomplete="off" autofocus>
      <button id="send-btn" class="btn primary" type="submit">Send</button>
    </form>
  </main>
</div>
<div id="toast" class="toast" hidden></div>
<script>
(function() {
  var messagesEl = document.getElementById('messages');
  var promptEl = document.getElementById('prompt');
  var sendBtn = document.getElementById('send-btn');
  var composer = document.getElementById('composer');
  var toastEl = document.getElementById('toast');
  var toastTimer = null;
  var streaming = false;

  function showToast(msg) {
    toastEl.textContent = msg;
    toastEl.hidden = false;
    if (toastTimer) clearTimeout(toastTimer);
    toastTimer = setTimeout(function() { toastEl.hidden = true; }, 2500);
  }

  function scrollBottom() {
    messagesEl.scrollTop = messagesEl.scrollHeight;
  }

  function addBubble(role, text) {
    var msg = document.createElement('div');
    msg.className = 'message ' + role;
    var who = document.createElement('div');
    who.className = 'who';
    who.textContent = role === 'user' ? 'You' : 'Assistant';
    var bubble = document.createElement('div');
    bubble.className = 'bubble';
    bubble.textContent = text;
    msg.appendChild(who);
    msg.appendChild(bubble);
    messagesEl.appendChild(msg);
    scrollBottom();
    return bubble;
  }

  function setStreaming(on) {
    streaming = on;
    sendBtn.disabled = on;
    promptEl.disabled = on;
    if (!on) promptEl.focus();
  }

  async function loadConversation() {
    try {
      var res = await fetch('/api/conversation');
      if (!res.ok) return;
      var data = await res.json();
      messagesEl.innerHTML = '';
      (data.turns || []).forEach(function(t) { addBubble(t.role, t.content); });
    } catch (e) { /* page still usable without history */ }
  }

  async function loadUploads() {
    try {
      var res = await fetch('/api/uploads');
      if (!res.ok) return;
      var data = await res.json();
      var list = document.getElementById('upload-list');
      list.innerHTML = '';
      (data.files || []).forEach(function(f) {
        var li = document.createElement('li');
        li.textContent = f.name;
        list.appendChild(li);
      });
    } catch (e) { /* non-fatal */ }
  }

  async function sendPrompt() {
    var prompt = promptEl.value;
    if (!prompt.trim() || streaming) return;

    setStreaming(true);
    promptEl.value = '';
    addBubble('user', prompt);
    var bubble = addBubble('assistant', '');

    try {
      var res = await fetch('/api/chat', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({prompt: prompt})
      });

      if (res.status === 204) {
        bubble.parentElement.remove();
        return;
      }
      if (!res.ok) {
        var body = await res.json().catch(function() { return null; });
        var msg = body && body.error ? body.error.message : 'request failed (' + res.status + ')';
        bubble.textContent = 'An error occurred: ' + msg;
        bubble.classList.add('error');
        return;
      }

      var reader = res.body.getReader();
      var decoder = new TextDecoder();
      var buf = '';
      for (;;) {
        var chunk = await reader.read();
        if (chunk.done) break;
        buf += decoder.decode(chunk.value, {stream: true});
        var idx;
        while ((idx = buf.indexOf('\n\n')) >= 0) {
          var raw = buf.slice(0, idx);
          buf = buf.slice(idx + 2);
          if (raw.indexOf('data: ') !== 0) continue;
          var payload = raw.slice(6);
          if (payload === '[DONE]') continue;
          var ev = JSON.parse(payload);
          if (ev.error) {
            bubble.textContent = ev.error;
            bubble.classList.add('error');
          } else {
            bubble.textContent = ev.text;
          }
          scrollBottom();
        }
      }
    } catch (e) {
      bubble.textContent = 'An error occurred: ' + e.message;
      bubble.classList.add('error');
    } finally {
      setStreaming(false);
    }
  }

  async function clearChat() {
    try {
      var res = await fetch('/api/conversation/clear', {method: 'POST'});
      if (res.ok) {
        messagesEl.innerHTML = '';
        showToast('Conversation cleared!');
      }
    } catch (e) { showToast('Clear failed'); }
  }

  async function uploadFile(file) {
    var form = new FormData();
    form.append('file', file);
    try {
      var res = await fetch('/api/upload', {method: 'POST', body: form});
      if (res.ok) {
        var stored = await res.json();
        showToast('File uploaded: ' + stored.name);
        loadUploads();
      } else {
        var body = await res.json().catch(function() { return null; });
        showToast(body && body.error ? body.error.message : 'upload failed');
      }
    } catch (e) { showToast('upload failed'); }
  }

  composer.addEventListener('submit', function(e) {
    e.preventDefault();
    sendPrompt();
  });

  document.getElementById('clear-btn').addEventListener('click', clearChat);

  document.getElementById('upload-btn').addEventListener('click', function() {
    document.getElementById('file-input').click();
  });
  document.getElementById('file-input').addEventListener('change', function(e) {
    if (e.target.files.length > 0) {
      uploadFile(e.target.files[0]);
      e.target.value = '';
    }
  });

  document.getElementById('theme-btn').addEventListener('click', function() {
    document.body.classList.toggle('light');
    localStorage.setItem('rigchat-theme',
      document.body.classList.contains('light') ? 'light' : 'dark');
  });
  var savedTheme = localStorage.getItem('rigchat-theme');
  if (savedTheme === 'light') document.body.classList.add('light');
  if (savedTheme === 'dark') document.body.classList.remove('light');

  loadConversation();
  loadUploads();
})();
</script>
</body>
</html>
`
