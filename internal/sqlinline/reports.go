package sqlinline

// QInsertReportAwardPoints stores the report and credits the reporter in one statement.
const QInsertReportAwardPoints = `--sql 2b1e914e-7959-40fb-b222-61c679b7df85
with inserted as (
    insert into reports (id, reporter_id, animal_type, description, location, contact, image_key,
                         latitude, longitude, status, report_time, updated_at)
    values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::text, $7::text,
            $8::double precision, $9::double precision, 'pending', now(), now())
    returning id, report_time, updated_at
),
credited as (
    update users
    set points = points + $10::int,
        updated_at = now()
    where id = $2::uuid
    returning username
)
select i.report_time, i.updated_at, c.username
from inserted i, credited c;
`

const QSelectReportByID = `--sql f1844658-68dd-40d7-be85-c5c4c3a80b4b
select r.id, r.reporter_id, u.username, r.animal_type, r.description, r.location, r.contact, r.image_key,
       r.latitude, r.longitude, r.status, r.volunteer_id::text, r.pickup_time, r.report_time, r.updated_at
from reports r
join users u on u.id = r.reporter_id
where r.id = $1::uuid
limit 1;
`

const QListReports = `--sql c1123ec2-2053-401d-9653-e1131d11b8c6
select r.id, r.reporter_id, u.username, r.animal_type, r.description, r.location, r.contact, r.image_key,
       r.latitude, r.longitude, r.status, r.volunteer_id::text, r.pickup_time, r.report_time, r.updated_at
from reports r
join users u on u.id = r.reporter_id
where ($1::text = '' or r.animal_type ilike '%' || $1::text || '%')
  and ($2::text = '' or r.status = $2::text)
order by r.report_time desc
limit $3::int;
`

const QReportAnimalTypes = `--sql 20b5a718-eeb8-41cc-b46b-200f64e8e979
select distinct animal_type
from reports
order by animal_type asc;
`

// QUpdateReportStatus only applies when the stored status still matches $2.
// Moving back to pending clears the volunteer.
const QUpdateReportStatus = `--sql 1a51fb2c-d47b-4522-91ae-af2c8d69d4b2
with updated as (
    update reports
    set status = $3::text,
        volunteer_id = case when $3::text = 'pending' then null else coalesce($4::uuid, volunteer_id) end,
        pickup_time = coalesce($5::timestamptz, pickup_time),
        updated_at = now()
    where id = $1::uuid
      and status = $2::text
    returning *
)
select r.id, r.reporter_id, u.username, r.animal_type, r.description, r.location, r.contact, r.image_key,
       r.latitude, r.longitude, r.status, r.volunteer_id::text, r.pickup_time, r.report_time, r.updated_at
from updated r
join users u on u.id = r.reporter_id;
`

const QListUnlocatedReports = `--sql 34de32ae-3608-4b99-b4fc-eca30d41493d
select r.id, r.reporter_id, u.username, r.animal_type, r.description, r.location, r.contact, r.image_key,
       r.latitude, r.longitude, r.status, r.volunteer_id::text, r.pickup_time, r.report_time, r.updated_at
from reports r
join users u on u.id = r.reporter_id
where r.latitude is null
order by r.report_time asc
limit $1::int;
`

const QSetReportLocation = `--sql 9327b1db-b281-4ffd-88f4-642fd89d988e
update reports
set latitude = $2::double precision,
    longitude = $3::double precision
where id = $1::uuid
  and latitude is null;
`
