package sqlinline

const QInsertEvent = `--sql e812c54d-c27e-49a0-8e92-311ac5b22fe2
insert into events (id, title, description, location, event_time, status, created_by, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::timestamptz, 'scheduled', $6::uuid, now(), now())
returning status, created_at, updated_at;
`

const QSelectEventByID = `--sql 2c7ffd56-f59e-42c5-8865-7d2f899863b6
select e.id, e.title, e.description, e.location, e.event_time, e.status, e.created_by,
       (select count(*) from event_participants p where p.event_id = e.id)::int as participants,
       e.created_at, e.updated_at
from events e
where e.id = $1::uuid
limit 1;
`

const QListEvents = `--sql bcd308e6-7e9f-4ed9-850f-eca9df8cbebb
select e.id, e.title, e.description, e.location, e.event_time, e.status, e.created_by,
       (select count(*) from event_participants p where p.event_id = e.id)::int as participants,
       e.created_at, e.updated_at
from events e
where $1::bool or e.status = 'scheduled'
order by e.event_time asc;
`

const QUpdateEvent = `--sql 6142a25e-2a03-4e3b-9288-992650e0f242
with updated as (
    update events
    set title = $2::text,
        description = $3::text,
        location = $4::text,
        event_time = $5::timestamptz,
        updated_at = now()
    where id = $1::uuid
    returning *
)
select e.id, e.title, e.description, e.location, e.event_time, e.status, e.created_by,
       (select count(*) from event_participants p where p.event_id = e.id)::int as participants,
       e.created_at, e.updated_at
from updated e;
`

const QCancelEvent = `--sql 8e6e5df9-391c-4e87-9d99-185292b5d318
with updated as (
    update events
    set status = 'cancelled',
        updated_at = now()
    where id = $1::uuid
    returning *
)
select e.id, e.title, e.description, e.location, e.event_time, e.status, e.created_by,
       (select count(*) from event_participants p where p.event_id = e.id)::int as participants,
       e.created_at, e.updated_at
from updated e;
`

// QInsertEventParticipant signs a user up only while the event is scheduled.
// The share lock orders it against a concurrent cancel. A null status means
// the event does not exist.
const QInsertEventParticipant = `--sql d0d9e0a8-6b8f-41f5-8583-609c9c9e1870
with ev as (
    select id, status from events where id = $1::uuid for share
), ins as (
    insert into event_participants (event_id, user_id, joined_at)
    select ev.id, $2::uuid, now() from ev where ev.status = 'scheduled'
    on conflict (user_id, event_id) do nothing
    returning 1
)
select (select status from ev), exists (select 1 from ins);
`
