package sqlinline

// QInsertDonationAwardPoints stores the donation and credits the donor in one statement.
const QInsertDonationAwardPoints = `--sql 85a3b920-a51f-4aaa-9d38-45b95a740ea3
with inserted as (
    insert into donations (id, donor_id, description, food_type, quantity, pickup_location, pickup_time,
                           pickup_latitude, pickup_longitude, created_at)
    values ($1::uuid, $2::uuid, $3::text, $4::text, $5::int, $6::text, $7::timestamptz,
            $8::double precision, $9::double precision, now())
    returning id, created_at
),
credited as (
    update users
    set points = points + $10::int,
        updated_at = now()
    where id = $2::uuid
    returning username
)
select i.created_at, c.username
from inserted i, credited c;
`

const QListRecentDonations = `--sql 9e4893b2-4316-41e5-b965-c1daa235849d
select d.id, d.donor_id, u.username, d.description, d.food_type, d.quantity, d.pickup_location,
       d.pickup_time, d.pickup_latitude, d.pickup_longitude, d.created_at
from donations d
join users u on u.id = d.donor_id
order by d.created_at desc
limit $1::int;
`

const QListAllDonations = `--sql d4f3aafb-b402-43c4-acd7-896dd3fda97e
select d.id, d.donor_id, u.username, d.description, d.food_type, d.quantity, d.pickup_location,
       d.pickup_time, d.pickup_latitude, d.pickup_longitude, d.created_at
from donations d
join users u on u.id = d.donor_id
order by d.created_at asc;
`

const QListUnlocatedDonations = `--sql 5f6c6ca7-f8d4-495d-ad72-d618cd920b33
select d.id, d.donor_id, u.username, d.description, d.food_type, d.quantity, d.pickup_location,
       d.pickup_time, d.pickup_latitude, d.pickup_longitude, d.created_at
from donations d
join users u on u.id = d.donor_id
where d.pickup_latitude is null
  and d.pickup_location <> ''
order by d.created_at asc
limit $1::int;
`

const QSetDonationLocation = `--sql f31d5488-e86e-4089-a04e-f3b082fe641d
update donations
set pickup_latitude = $2::double precision,
    pickup_longitude = $3::double precision
where id = $1::uuid
  and pickup_latitude is null;
`
