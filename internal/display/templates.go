package display

const styles = `
.ayurvedic-diagnosis { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 1200px; margin: 20px auto; background: linear-gradient(135deg, #f5f7fa 0%, #c3cfe2 100%); border-radius: 15px; box-shadow: 0 10px 30px rgba(0,0,0,0.1); overflow: hidden; }
.diagnosis-header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 25px; text-align: center; }
.diagnosis-header h1 { margin: 0; font-size: 2.2em; font-weight: 300; }
.diagnosis-header .subtitle { font-size: 1.1em; opacity: 0.9; margin-top: 10px; }
.diagnosis-content { padding: 30px; }
.diagnosis-section { background: white; margin: 20px 0; border-radius: 10px; box-shadow: 0 5px 15px rgba(0,0,0,0.08); overflow: hidden; }
.section-header { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); color: white; padding: 15px 25px; font-size: 1.3em; font-weight: 600; }
.section-content { padding: 25px; }
.dosha-badge { display: inline-block; padding: 8px 16px; border-radius: 20px; font-weight: 600; font-size: 1.1em; margin: 10px 0; color: white; }
.dosha-vata { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
.dosha-pitta { background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%); }
.dosha-kapha { background: linear-gradient(135deg, #4facfe 0%, #00f2fe 100%); }
.dosha-unknown { background: #6c757d; }
.treatment-category { background: #f8f9fa; border-left: 4px solid #007bff; padding: 15px; margin: 10px 0; border-radius: 5px; }
.treatment-category h4 { margin: 0 0 10px 0; color: #495057; }
.treatment-list { list-style: none; padding: 0; margin: 0; }
.treatment-list li { padding: 8px 0; border-bottom: 1px solid #e9ecef; color: #6c757d; }
.treatment-list li:last-child { border-bottom: none; }
.evidence-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(300px, 1fr)); gap: 20px; margin: 15px 0; }
.evidence-item { background: #f8f9fa; padding: 15px; border-radius: 8px; border-left: 4px solid #28a745; }
.disclaimer { background: #fff3cd; border: 1px solid #ffeaa7; border-radius: 8px; padding: 15px; margin: 20px 0; color: #856404; font-size: 0.9em; }
.metadata { background: #e9ecef; padding: 15px; border-radius: 8px; margin: 20px 0; font-size: 0.85em; color: #6c757d; }
.error-message { background: #f8d7da; border: 1px solid #f5c6cb; border-radius: 8px; padding: 20px; margin: 20px 0; color: #721c24; }
.error-message pre { white-space: pre-wrap; }
.quick-summary { background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 10px 0; }
.batch-case h2 { font-weight: 400; }
`

const templates = `
{{define "list"}}{{if .}}{{range .}}<li>{{.}}</li>{{end}}{{else}}<li>No items specified</li>{{end}}{{end}}

{{define "report"}}<div class="ayurvedic-diagnosis">
  <div class="diagnosis-header">
    <h1>Ayurvedic Diagnostic Report</h1>
    <div class="subtitle">Comprehensive Analysis &amp; Treatment Recommendations</div>
  </div>
  <div class="diagnosis-content">
    <div class="diagnosis-section">
      <div class="section-header">Dominant Dosha Analysis</div>
      <div class="section-content">
        <div class="{{.DoshaClass}} dosha-badge">{{.Dosha}} Predominance</div>
        <p><strong>Primary Diagnosis:</strong> {{or .D.Diagnosis "Not specified"}}</p>
      </div>
    </div>
    <div class="diagnosis-section">
      <div class="section-header">Identified Imbalances</div>
      <div class="section-content"><ul class="treatment-list">{{template "list" .D.Imbalances}}</ul></div>
    </div>
    <div class="diagnosis-section">
      <div class="section-header">Supporting Evidence</div>
      <div class="section-content">
      {{- with .D.SupportingEvidence}}{{if or .SymptomsMatchingDosha .PulseIndication .TongueIndication}}
        <div class="evidence-grid">
          {{- if .SymptomsMatchingDosha}}
          <div class="evidence-item"><h5>Symptoms Matching Dosha</h5><ul class="treatment-list">{{template "list" .SymptomsMatchingDosha}}</ul></div>
          {{- end}}
          {{- if .PulseIndication}}
          <div class="evidence-item"><h5>Pulse Indication</h5><p>{{.PulseIndication}}</p></div>
          {{- end}}
          {{- if .TongueIndication}}
          <div class="evidence-item"><h5>Tongue Indication</h5><p>{{.TongueIndication}}</p></div>
          {{- end}}
        </div>
      {{- else}}
        <p>No supporting evidence provided.</p>
      {{- end}}{{end}}
      </div>
    </div>
    <div class="diagnosis-section">
      <div class="section-header">Treatment Recommendations</div>
      <div class="section-content">
      {{- range .Treatments}}
        <div class="treatment-category"><h4>{{.Title}}</h4><ul class="treatment-list">{{template "list" .Items}}</ul></div>
      {{- else}}
        <p>No treatment recommendations provided.</p>
      {{- end}}
      </div>
    </div>
    <div class="disclaimer">
      <strong>Important Disclaimer:</strong> This analysis is for educational and informational purposes only.
      It should not replace professional medical advice. Always consult with qualified Ayurvedic practitioners
      for proper diagnosis and treatment. Individual results may vary.
    </div>
    {{- if .Details}}
    <div class="metadata">
      <strong>Analysis Details:</strong><br>
      {{range $i, $d := .Details}}{{if $i}}, {{end}}<strong>{{$d.Key}}:</strong> {{$d.Value}}{{end}}<br>
      <em>Generated on: {{.Generated}}</em>
    </div>
    {{- end}}
  </div>
</div>{{end}}

{{define "summary"}}<div class="quick-summary">
  <h3>Quick Diagnosis Summary</h3>
  <p><strong>Dominant Dosha:</strong> <span class="{{.DoshaClass}} dosha-badge">{{.Dosha}}</span></p>
  <p><strong>Diagnosis:</strong> {{or .D.Diagnosis "Not specified"}}</p>
  <p><em>Generated on: {{.Generated}}</em></p>
</div>{{end}}

{{define "error"}}<div class="ayurvedic-diagnosis">
  <div class="diagnosis-header"><h1>Diagnostic Error</h1></div>
  <div class="diagnosis-content">
    <div class="error-message">
      <h3>Error occurred during diagnosis:</h3>
      <p>{{.Message}}</p>
      {{- if .Raw}}
      <p><strong>Raw content:</strong></p>
      <pre>{{.Raw}}</pre>
      {{- end}}
    </div>
  </div>
</div>{{end}}

{{define "batch"}}<div class="batch">
  <p><strong>{{.Succeeded}} of {{.Total}}</strong> analyses succeeded.</p>
  {{- range .Cases}}
  <div class="batch-case">
    <h2>Case {{.N}}: {{.Symptoms}}</h2>
    {{.Body}}
  </div>
  {{- end}}
</div>{{end}}

{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>{{.Styles}}</style>
</head>
<body>
{{.Body}}
</body>
</html>
{{end}}
`
