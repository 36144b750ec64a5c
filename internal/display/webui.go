package display

// Embedded kiosk pages. Styling kept minimal on purpose; these render on the
// kiosk's own screen, not a general-purpose browser.

const welcomeUI = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Welcome</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#0f172a;color:#e2e8f0;line-height:1.6}
.hdr{padding:40px 20px;text-align:center}
.hdr h1{font-size:42px;font-weight:700}
.hdr p{color:#94a3b8;font-size:18px;margin-top:6px}
.counters{display:flex;justify-content:center;gap:40px;margin:20px 0}
.counter{background:#1e293b;border-radius:12px;padding:24px 40px;text-align:center}
.counter .num{font-size:48px;font-weight:700;color:#38bdf8}
.counter .lbl{color:#94a3b8;font-size:14px;text-transform:uppercase}
.feed{max-width:700px;margin:0 auto;padding:20px}
.feed h2{font-size:20px;margin-bottom:12px;color:#94a3b8}
.event{background:#1e293b;border-radius:8px;padding:14px 18px;margin-bottom:10px;display:flex;justify-content:space-between;align-items:center}
.event .who{font-size:18px;font-weight:600}
.event .meta{color:#94a3b8;font-size:13px}
.event.checkout{opacity:.6}
.empty{text-align:center;color:#64748b;padding:40px}
.offline{position:fixed;bottom:12px;right:16px;color:#f87171;font-size:12px;display:none}
</style>
</head>
<body>
<div class="hdr"><h1>Welcome</h1><p>Please scan your badge at the kiosk</p></div>
<div class="counters">
  <div class="counter"><div class="num" id="checkin-total">0</div><div class="lbl">Checked in</div></div>
  <div class="counter"><div class="num" id="total">0</div><div class="lbl">Guests</div></div>
</div>
<div class="feed"><h2>Recent check-ins</h2><div id="events"><div class="empty">Waiting for the first guest…</div></div></div>
<div class="offline" id="offline">feed offline</div>
<script>
function esc(s){const d=document.createElement('div');d.textContent=s||'';return d.innerHTML}
async function refresh(){
  try{
    const res=await fetch('/api/feed');
    const data=await res.json();
    document.getElementById('total').textContent=data.total;
    document.getElementById('checkin-total').textContent=data.checkin_total;
    const el=document.getElementById('events');
    if(!data.events.length){el.innerHTML='<div class="empty">Waiting for the first guest…</div>';}
    else{
      el.innerHTML=data.events.map(e=>
        '<div class="event'+(e.type==='user_checkout'?' checkout':'')+'">'+
        '<div><div class="who">'+esc(e.name)+'</div><div class="meta">'+esc(e.title||'')+(e.department?' · '+esc(e.department):'')+'</div></div>'+
        '<div class="meta">'+new Date(e.at).toLocaleTimeString()+'</div></div>').join('');
    }
    document.getElementById('offline').style.display='none';
  }catch(err){
    document.getElementById('offline').style.display='block';
  }
}
refresh();
setInterval(refresh,3000);
</script>
</body>
</html>`

const loginUI = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Kiosk Login</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;display:flex;align-items:center;justify-content:center;min-height:100vh}
.box{background:#fff;border-radius:8px;padding:32px;width:340px;box-shadow:0 2px 8px rgba(0,0,0,.1)}
.box h1{font-size:20px;margin-bottom:20px;text-align:center}
input{width:100%;padding:10px;border:1px solid #d1d5db;border-radius:6px;font-size:14px;margin-bottom:12px}
button{width:100%;background:#667eea;color:#fff;border:none;padding:10px;border-radius:6px;font-size:14px;cursor:pointer}
button:hover{background:#5a67d8}
.err{color:#ef4444;font-size:13px;margin-bottom:10px;display:none;text-align:center}
</style>
</head>
<body>
<div class="box">
<h1>Admin Login</h1>
<div class="err" id="err">Access denied</div>
<input type="password" id="key" placeholder="Secret key" autofocus>
<button onclick="login()">Sign in</button>
</div>
<script>
async function login(){
  const key=document.getElementById('key').value.trim();
  if(!key)return;
  const res=await fetch('/api/login',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({secret_key:key})});
  if(res.ok){window.location='/admin';}
  else{document.getElementById('err').style.display='block';}
}
document.getElementById('key').addEventListener('keydown',e=>{if(e.key==='Enter')login()});
</script>
</body>
</html>`

const adminUI = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Guest Management</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}
.hdr{background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;padding:14px 20px;display:flex;justify-content:space-between;align-items:center}
.hdr h1{font-size:18px}
.hdr a{color:#fff;font-size:13px;margin-left:14px;text-decoration:none}
.content{max-width:960px;margin:0 auto;padding:20px}
.bar{display:flex;gap:10px;margin-bottom:14px}
.bar input{flex:1;padding:8px;border:1px solid #d1d5db;border-radius:6px}
.btn{background:#667eea;color:#fff;border:none;padding:8px 16px;border-radius:6px;cursor:pointer;font-size:13px}
.btn:hover{background:#5a67d8}
.btn-danger{background:#ef4444}
table{width:100%;background:#fff;border-radius:8px;border-collapse:collapse;overflow:hidden;box-shadow:0 1px 3px rgba(0,0,0,.1)}
th,td{padding:10px 12px;text-align:left;font-size:13px;border-bottom:1px solid #f0f0f0}
th{background:#f9fafb;color:#666;text-transform:uppercase;font-size:11px}
.ok{color:#22c55e}.no{color:#9ca3af}
.pager{display:flex;gap:6px;justify-content:center;margin:16px 0}
.pager button{border:1px solid #d1d5db;background:#fff;padding:6px 10px;border-radius:4px;cursor:pointer;font-size:13px}
.pager button.cur{background:#667eea;color:#fff;border-color:#667eea}
.pager span{padding:6px 2px;color:#9ca3af}
.totals{color:#666;font-size:13px;margin-bottom:10px}
</style>
</head>
<body>
<div class="hdr"><h1>Guest Management</h1><div><a href="/scan">Scanner</a><a href="#" onclick="logout()">Log out</a></div></div>
<div class="content">
<div class="bar">
<input id="search" placeholder="Search name or department…">
<button class="btn" onclick="load(0)">Search</button>
<button class="btn" onclick="createUser()">Add Guest</button>
</div>
<div class="totals" id="totals"></div>
<table><thead><tr><th>Badge</th><th>Name</th><th>Title</th><th>Department</th><th>Seat</th><th>Status</th><th></th></tr></thead>
<tbody id="rows"></tbody></table>
<div class="pager" id="pager"></div>
</div>
<script>
let page=0;
function esc(s){const d=document.createElement('div');d.textContent=s||'';return d.innerHTML}
function authGuard(res){
  if(res.status===401){setTimeout(()=>{window.location='/login'},800);return true}
  return false;
}
async function load(p){
  page=p;
  const q=encodeURIComponent(document.getElementById('search').value.trim());
  const res=await fetch('/api/users?page_number='+p+'&page_size=10&search='+q);
  if(authGuard(res))return;
  const data=await res.json();
  document.getElementById('totals').textContent=data.total+' guests, '+data.checkin_total+' checked in';
  document.getElementById('rows').innerHTML=(data.data||[]).map(u=>
    '<tr><td>'+esc(u.user_id)+'</td><td>'+esc(u.name)+'</td><td>'+esc(u.title)+'</td><td>'+esc(u.department)+'</td>'+
    '<td>'+(u.seat_number||'')+'</td>'+
    '<td class="'+(u.is_checked_in?'ok':'no')+'">'+(u.is_checked_in?'checked in':'—')+'</td>'+
    '<td><a href="/api/users/'+encodeURIComponent(u._id)+'/qr" target="_blank">QR</a> '+
    '<button class="btn" onclick="editUser(\''+esc(u._id)+'\')">Edit</button> '+
    '<button class="btn btn-danger" onclick="removeUser(\''+esc(u._id)+'\')">Delete</button></td></tr>').join('');
  const pager=document.getElementById('pager');
  pager.innerHTML=(data.pages||[]).map(n=>
    n<0?'<span>…</span>':'<button class="'+(n===data.page_number?'cur':'')+'" onclick="load('+n+')">'+(n+1)+'</button>').join('');
}
async function createUser(){
  const name=prompt('Name');if(!name)return;
  const badge=prompt('Badge id');if(!badge)return;
  const res=await fetch('/api/users',{method:'POST',headers:{'Content-Type':'application/json'},
    body:JSON.stringify({user_id:badge,name:name,title:prompt('Title')||'',department:prompt('Department')||''})});
  if(authGuard(res))return;
  load(page);
}
async function editUser(id){
  const name=prompt('New name (blank keeps current)');
  if(name===null)return;
  const fields={};if(name)fields.name=name;
  const res=await fetch('/api/users/'+encodeURIComponent(id),{method:'PUT',headers:{'Content-Type':'application/json'},body:JSON.stringify(fields)});
  if(authGuard(res))return;
  load(page);
}
async function removeUser(id){
  if(!confirm('Delete this guest?'))return;
  const res=await fetch('/api/users/'+encodeURIComponent(id),{method:'DELETE'});
  if(authGuard(res))return;
  load(page);
}
async function logout(){
  await fetch('/api/logout',{method:'POST'});
  window.location='/login';
}
load(0);
</script>
</body>
</html>`

const scanUI = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Badge Scanner</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}
.hdr{background:linear-gradient(135deg,#667eea 0%,#764ba2 100%);color:#fff;padding:14px 20px;display:flex;justify-content:space-between;align-items:center}
.hdr h1{font-size:18px}
.hdr a{color:#fff;font-size:13px;text-decoration:none}
.content{max-width:600px;margin:0 auto;padding:20px}
.card{background:#fff;border-radius:8px;padding:20px;margin-bottom:16px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.card h2{font-size:16px;margin-bottom:12px;padding-bottom:8px;border-bottom:1px solid #eee}
.row{display:flex;justify-content:space-between;padding:8px 0;font-size:14px;border-bottom:1px solid #f0f0f0}
.row:last-child{border-bottom:none}
.lbl{color:#666}
.btn{background:#667eea;color:#fff;border:none;padding:10px 18px;border-radius:6px;cursor:pointer;font-size:14px;margin-right:8px}
.btn:hover{background:#5a67d8}
.btn:disabled{background:#d1d5db;cursor:default}
.manual{display:flex;gap:8px}
.manual input{flex:1;padding:10px;border:1px solid #d1d5db;border-radius:6px}
.dialog{position:fixed;inset:0;background:rgba(0,0,0,.5);display:none;align-items:center;justify-content:center}
.dialog .inner{background:#fff;border-radius:8px;padding:28px;max-width:420px;text-align:center}
.dialog h3{font-size:18px;margin-bottom:10px}
.dialog p{font-size:14px;color:#555;white-space:pre-line;margin-bottom:18px}
.dialog.error h3{color:#ef4444}
.dialog.success h3{color:#22c55e}
</style>
</head>
<body>
<div class="hdr"><h1>Badge Scanner</h1><a href="/admin">Guests</a></div>
<div class="content">
<div class="card"><h2>Scanner</h2>
<div class="row"><span class="lbl">State</span><span id="phase">–</span></div>
<div class="row"><span class="lbl">Device</span><span id="device">–</span></div>
<div style="margin-top:14px">
<button class="btn" id="toggle" onclick="toggleCam()">Start</button>
<button class="btn" id="switch" onclick="switchCam()" disabled>Switch camera</button>
<button class="btn" id="retry" onclick="toggleCam()" style="display:none">Request permission</button>
</div>
</div>
<div class="card"><h2>Manual check-in</h2>
<div class="manual"><input id="manual" placeholder="Badge id"><button class="btn" onclick="manual()">Check in</button></div>
</div>
</div>
<div class="dialog" id="dialog"><div class="inner"><h3 id="d-title"></h3><p id="d-msg"></p><button class="btn" onclick="ack()">OK</button></div></div>
<script>
let dialogId=null;
function authGuard(res){if(res.status===401){setTimeout(()=>{window.location='/login'},800);return true}return false}
async function refresh(){
  const res=await fetch('/api/scanner');
  if(authGuard(res))return;
  const st=await res.json();
  document.getElementById('phase').textContent=st.phase||'disabled';
  const dev=(st.devices||[])[st.device_index];
  document.getElementById('device').textContent=dev?dev.label:'none';
  document.getElementById('toggle').textContent=st.scanning?'Stop':'Start';
  document.getElementById('switch').disabled=!st.can_switch;
  const retry=document.getElementById('retry');
  retry.style.display=(st.last_error&&st.last_error.retryable)?'inline-block':'none';
  pollNotices();
}
async function pollNotices(){
  const res=await fetch('/api/notices');
  if(authGuard(res))return;
  const data=await res.json();
  const pending=(data.pending||[])[0];
  const dlg=document.getElementById('dialog');
  if(pending){
    dialogId=pending.id;
    dlg.className='dialog '+pending.kind;
    dlg.style.display='flex';
    document.getElementById('d-title').textContent=pending.title;
    document.getElementById('d-msg').textContent=pending.message;
  }else{
    dialogId=null;
    dlg.style.display='none';
  }
}
async function ack(){
  if(!dialogId)return;
  await fetch('/api/notices/'+dialogId+'/ack',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({confirmed:true})});
  refresh();
}
async function toggleCam(){
  const res=await fetch('/api/scanner/toggle',{method:'POST'});
  if(authGuard(res))return;
  refresh();
}
async function switchCam(){
  const res=await fetch('/api/scanner/switch',{method:'POST'});
  if(authGuard(res))return;
  refresh();
}
async function manual(){
  const payload=document.getElementById('manual').value.trim();
  if(!payload)return;
  const res=await fetch('/api/scanner/submit',{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify({payload:payload})});
  if(authGuard(res))return;
  document.getElementById('manual').value='';
}
refresh();
setInterval(refresh,1500);
</script>
</body>
</html>`
