package librarybook

const homePage = `<html><body>
<form method="post" action="index.html">
<input type="submit" id="logout" name="logout" value="Logout">
<select name="building">
<option value="">Select a library</option>
<option value="1"> Chifley Library </option>
<option value="2">Hancock Library</option>
</select>
<select name="bday">
<option value="2016-07-26">Tuesday, 26 July 2016</option>
<option value="2016-07-27">Wednesday, 27 July 2016</option>
</select>
</form>
</body></html>`

const loginFailedPage = `<html><body>
<form><input type="text" name="inp_uid"><input type="password" name="inp_passwd"></form>
</body></html>`

const roomsPage = `<html><body>
<form id="booking">
<select id="bhour"><option value="7">7</option><option value="8">8</option><option value="20">20</option></select>
<select id="bminute"><option value="00">00</option><option value="15">15</option><option value="30">30</option><option value="45">45</option></select>
<input type="radio" name="room_no" value="101"><div><span>Room 101</span><br><span>Group study room. Seats 6</span></div><div><p>Not available: 09:00 - 09:30</p><p>Booked by you</p><p>Not available: 13:00 - 14:00</p></div>
<input type="radio" name="room_no" value="102"><div><span>Room 102</span><br><span>Projector room</span></div><div></div>
</form>
</body></html>`

const closedPage = `<html><body>
<form id="booking">
<select id="bhour"></select>
<select id="bminute"></select>
</form>
</body></html>`

const bookedPage = `<html><body>
<table>
<tr><th>Library</th><th>Room</th><th>Day</th><th>Time</th><th>Booking id</th></tr>
<tr><td>Chifley Library</td><td>101</td><td>2016-07-27</td><td>10:00 - 11:00</td><td> 123456 </td></tr>
</table>
</body></html>`

const rejectedPage = `<html><body>
<div class="error"> You already have a booking at this time. </div>
</body></html>`

const strangePage = `<html><body><p>Service temporarily unavailable</p></body></html>`

const bookingsPage = `<html><body>
<table id="mybookings">
<tr><th>Id</th><th>Library</th><th>Room</th><th>Time</th></tr>
<tr><td>42</td><td>Chifley Library</td><td>101</td><td>Wednesday, 27 July 2016: 23:00 - 23:15</td></tr>
<tr><td>43</td><td>Hancock Library</td><td>2.14</td><td>Tuesday, 2 August 2016: 9:00 - 11:00</td></tr>
</table>
</body></html>`
