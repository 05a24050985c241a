package web

import "html/template"

var widget = template.HTML(`<style>
.widget { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 1200px; margin: 20px auto; }
.widget header { text-align: center; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; border-radius: 10px; }
.widget .panel { background: #f8f9fa; padding: 20px; border-radius: 10px; border: 1px solid #dee2e6; margin: 20px 0; }
.widget textarea { width: 100%; min-height: 80px; font: inherit; }
.widget button { padding: 8px 16px; border-radius: 5px; border: 1px solid #007bff; background: #007bff; color: white; cursor: pointer; }
.widget .chat-log { max-height: 400px; overflow-y: auto; background: white; padding: 10px; border-radius: 8px; }
.widget .user-message { background: #007bff; color: white; padding: 10px 15px; border-radius: 15px; margin: 10px 0 10px auto; max-width: 80%; text-align: right; }
.widget .assistant-message { background: #e9ecef; color: #333; padding: 10px 15px; border-radius: 15px; margin: 10px auto 10px 0; max-width: 80%; white-space: pre-wrap; }
.widget .status { color: #6c757d; font-size: 0.9em; margin-top: 8px; }
</style>
<div class="widget">
  <header>
    <h1>Ayurvedic Diagnostic Assistant</h1>
    <p>Describe your symptoms for a structured Ayurvedic analysis, or chat with Dr. Priya.</p>
  </header>

  <section class="panel">
    <label><input type="checkbox" id="use-rag" checked> Use RAG knowledge</label>
    <label>Temperature <input type="range" id="temperature" min="0.1" max="1.0" step="0.1" value="0.2"><span id="temperature-value">0.2</span></label>
  </section>

  <section class="panel">
    <h2>Diagnose</h2>
    <textarea id="symptoms" placeholder="e.g. I have joint pain that worsens in cold weather and trouble sleeping"></textarea>
    <button id="diagnose-btn">Analyze symptoms</button>
    <div class="status" id="diagnose-status"></div>
    <div id="diagnosis"></div>
  </section>

  <section class="panel">
    <h2>Chat with Dr. Priya</h2>
    <div class="chat-log" id="chat-log"></div>
    <textarea id="chat-message" placeholder="Type your message here..."></textarea>
    <button id="chat-btn">Send message</button>
    <button id="chat-clear">Clear chat</button>
    <div class="status" id="chat-status">Ready to chat!</div>
  </section>

  <section class="panel">
    <h2>Batch analysis</h2>
    <textarea id="batch" placeholder="One symptom description per line"></textarea>
    <button id="batch-btn">Analyze all</button>
    <div class="status" id="batch-status"></div>
    <div id="batch-results"></div>
  </section>
</div>
<script>
(function () {
  const $ = (id) => document.getElementById(id);
  let sessionID = "";

  $("temperature").addEventListener("input", () => { $("temperature-value").textContent = $("temperature").value; });

  function opts() {
    return { use_rag: $("use-rag").checked, temperature: parseFloat($("temperature").value) };
  }

  async function post(url, body) {
    return fetch(url, { method: "POST", headers: { "Content-Type": "application/json" }, body: JSON.stringify(body) });
  }

  $("diagnose-btn").addEventListener("click", async () => {
    const symptoms = $("symptoms").value.trim();
    if (!symptoms) { $("diagnose-status").textContent = "Please describe your symptoms."; return; }
    $("diagnose-status").textContent = "Analyzing...";
    const resp = await post("/api/diagnose/html", Object.assign({ symptoms }, opts()));
    $("diagnosis").innerHTML = await resp.text();
    $("diagnose-status").textContent = resp.ok ? "Analysis complete" : "Analysis failed";
  });

  function addMessage(cls, text) {
    const div = document.createElement("div");
    div.className = cls;
    div.textContent = text;
    $("chat-log").appendChild(div);
    $("chat-log").scrollTop = $("chat-log").scrollHeight;
  }

  $("chat-btn").addEventListener("click", async () => {
    const message = $("chat-message").value.trim();
    if (!message) { $("chat-status").textContent = "Please enter a message."; return; }
    addMessage("user-message", message);
    $("chat-message").value = "";
    $("chat-status").textContent = "Dr. Priya is typing...";
    const resp = await post("/api/chat", Object.assign({ session_id: sessionID, message }, opts()));
    const data = await resp.json();
    if (!resp.ok) { $("chat-status").textContent = "Error: " + data.error; return; }
    sessionID = data.session_id;
    addMessage("assistant-message", data.reply);
    $("chat-status").textContent = "Response generated successfully";
  });

  $("chat-clear").addEventListener("click", async () => {
    if (sessionID) { await fetch("/api/chat/" + encodeURIComponent(sessionID), { method: "DELETE" }); }
    sessionID = "";
    $("chat-log").innerHTML = "";
    $("chat-status").textContent = "Chat history cleared";
  });

  $("batch-btn").addEventListener("click", async () => {
    const symptoms = $("batch").value.split("\n").map((s) => s.trim()).filter((s) => s);
    if (!symptoms.length) { $("batch-status").textContent = "Enter at least one symptom description."; return; }
    $("batch-status").textContent = "Analyzing " + symptoms.length + " cases...";
    const resp = await post("/api/batch?format=html", Object.assign({ symptoms }, opts()));
    if (!resp.ok) { const data = await resp.json(); $("batch-status").textContent = "Error: " + data.error; return; }
    $("batch-results").innerHTML = await resp.text();
    $("batch-status").textContent = "Batch complete";
  });
})();
</script>`)
